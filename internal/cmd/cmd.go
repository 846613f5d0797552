package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"kinectbase/internal/config"
	"kinectbase/internal/kinect"
	"kinectbase/internal/server"
)

// ServeCmdFlags はserveコマンドのフラグを登録する
func ServeCmdFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "設定ファイルのパス (YAML)")
	cmd.Flags().String("host", "", "サーバーのホスト (デフォルト: 0.0.0.0)")
	cmd.Flags().IntP("port", "p", 0, "サーバーのポート (デフォルト: 8080)")
	cmd.Flags().String("driver", "", "使用するドライバー (mock / k4a)")
	cmd.Flags().Int("device", -1, "開くデバイス番号")
	cmd.Flags().Bool("debug", false, "デバッグログを有効にする")
}

// loadConfig は設定を読み込み、指定されたコマンドライン引数で上書きする
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.LoadWithFlags(cmd.Flags())
}

// setupLogger はログレベルを設定する
func setupLogger(cfg *config.Config) *log.Logger {
	logger := log.StandardLogger()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// ServeCmdRunE はサーバーを起動する
func ServeCmdRunE(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	logger := setupLogger(cfg)

	driver, err := kinect.OpenDriver(cfg.Kinect.Driver, cfg.Kinect.MockDevices)
	if err != nil {
		return fmt.Errorf("ドライバーの初期化に失敗しました: %w", err)
	}

	logger.Infoln("server.address:", cfg.ServerAddress())
	logger.Infoln("kinect.driver:", cfg.Kinect.Driver)
	logger.Infoln("kinect.device_index:", cfg.Kinect.DeviceIndex)
	logger.Infoln("kinect.use_imu:", cfg.Kinect.UseIMU)
	logger.Infoln("sampler.enabled:", cfg.Sampler.Enabled)
	logger.Infoln("debug:", cfg.Debug)

	srv, err := server.New(cfg, driver, logger)
	if err != nil {
		return fmt.Errorf("サーバーの初期化に失敗しました: %w", err)
	}
	if err := srv.Start(cmd.Context()); err != nil {
		return fmt.Errorf("サーバーの起動に失敗しました: %w", err)
	}
	return nil
}

// NewServeCmd はserveコマンドを作成する
func NewServeCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "デバイスセッションを管理するHTTPサーバーを起動する",
		Long: `デバイスセッションを管理するHTTPサーバーを起動する。
設定は以下の順に上書きされる:
1. デフォルト値
2. --config (または KINECT_CONFIG) で指定した設定ファイル
3. 環境変数 (SERVER_HOST, PORT, KINECT_DRIVER, KINECT_DEVICE_INDEX, KINECT_USE_IMU, KINECT_MOCK_DEVICES)
4. コマンドライン引数
`,
		Example: `  kinectbase serve --config=/path/to/config.yaml
  kinectbase serve --driver=k4a --device=0 --debug`,
		RunE: ServeCmdRunE,
	}
	ServeCmdFlags(serve)
	return serve
}

// NewDevicesCmd は接続デバイス数を表示するコマンドを作成する
func NewDevicesCmd() *cobra.Command {
	devices := &cobra.Command{
		Use:   "devices",
		Short: "接続されているデバイス数を表示する",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			driver, err := kinect.OpenDriver(cfg.Kinect.Driver, cfg.Kinect.MockDevices)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", kinect.QueryInstalledDeviceCount(driver))
			return nil
		},
	}
	ServeCmdFlags(devices)
	return devices
}

// NewConfigCmd は適用される設定をYAMLで表示するコマンドを作成する
func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "適用される設定をYAMLで表示する",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("設定の出力に失敗: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	ServeCmdFlags(configCmd)
	return configCmd
}

// NewRootCmd はルートコマンドを作成する
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kinectbase",
		Short:         "深度カメラのセッション管理サーバー",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(NewServeCmd(), NewDevicesCmd(), NewConfigCmd())
	return root
}

// Execute はルートコマンドを実行する
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
