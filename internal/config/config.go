package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"kinectbase/internal/kinect"
	"kinectbase/internal/sampler"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Kinect  KinectConfig   `yaml:"kinect"`
	Sampler sampler.Config `yaml:"sampler"`
	Debug   bool           `yaml:"debug"` // デバッグログを出力するか
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host" validate:"required"`        // リッスンするホスト
	Port int    `yaml:"port" validate:"min=1,max=65535"` // リッスンするポート番号

	// タイムアウト設定
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"min=0"`  // 読み込みタイムアウト
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"min=0"` // 書き込みタイムアウト
}

// KinectConfig はデバイスセッションの設定
type KinectConfig struct {
	Driver      string `yaml:"driver" validate:"oneof=mock k4a"` // 使用するドライバー
	DeviceIndex uint32 `yaml:"device_index"`                     // 開くデバイス番号
	UseIMU      bool   `yaml:"use_imu"`                          // IMUを使うか
	MockDevices int    `yaml:"mock_devices" validate:"min=0"`    // モックドライバーのデバイス数

	// 取得時の待機時間
	CaptureTimeout time.Duration `yaml:"capture_timeout" validate:"gt=0"`
	IMUTimeout     time.Duration `yaml:"imu_timeout" validate:"gt=0"`

	// 起動時に適用するストリーム設定
	Stream kinect.Config `yaml:"stream"`
}

var validate = validator.New()

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Kinect: KinectConfig{
			Driver:         kinect.DriverMock,
			DeviceIndex:    0,
			UseIMU:         false,
			MockDevices:    1,
			CaptureTimeout: kinect.DefaultWaitTimeout,
			IMUTimeout:     kinect.DefaultWaitTimeout,
			Stream:         kinect.DefaultConfig(),
		},
		Sampler: sampler.DefaultConfig(),
	}
}

// override は環境変数とコマンドライン引数で上書きできる設定項目
type override struct {
	key  string // 設定キー
	env  string // 環境変数名
	flag string // コマンドライン引数名
}

// 上書きの優先順位は コマンドライン引数 > 環境変数 > 設定ファイル > デフォルト値
var overrides = []override{
	{key: "config", env: "KINECT_CONFIG", flag: "config"},
	{key: "server.host", env: "SERVER_HOST", flag: "host"},
	{key: "server.port", env: "PORT", flag: "port"},
	{key: "kinect.driver", env: "KINECT_DRIVER", flag: "driver"},
	{key: "kinect.device_index", env: "KINECT_DEVICE_INDEX", flag: "device"},
	{key: "kinect.use_imu", env: "KINECT_USE_IMU"},
	{key: "kinect.mock_devices", env: "KINECT_MOCK_DEVICES"},
	{key: "debug", flag: "debug"},
}

// Load は設定を読み込む。
// デフォルト値、設定ファイル（pathが空なら KINECT_CONFIG）、環境変数の順に上書きする
func Load(path string) (*Config, error) {
	return load(path, nil)
}

// LoadWithFlags は Load に加えてコマンドライン引数で上書きする。
// 引数は明示的に指定されたものだけが反映される
func LoadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	return load("", flags)
}

func load(path string, flags *pflag.FlagSet) (*Config, error) {
	v, err := newViper(flags)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = v.GetString("config")
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("設定ファイルの解析に失敗: %w", err)
		}
	}

	if err := cfg.applyOverrides(v); err != nil {
		return nil, err
	}

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// newViper は上書き対象の環境変数とコマンドライン引数を束ねる
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	for _, o := range overrides {
		if o.env != "" {
			if err := v.BindEnv(o.key, o.env); err != nil {
				return nil, fmt.Errorf("環境変数 %s の登録に失敗: %w", o.env, err)
			}
		}
		if o.flag == "" || flags == nil {
			continue
		}
		if f := flags.Lookup(o.flag); f != nil {
			if err := v.BindPFlag(o.key, f); err != nil {
				return nil, fmt.Errorf("引数 --%s の登録に失敗: %w", o.flag, err)
			}
		}
	}
	return v, nil
}

// applyOverrides は環境変数とコマンドライン引数で設定を上書きする
func (c *Config) applyOverrides(v *viper.Viper) error {
	if v.IsSet("server.host") {
		c.Server.Host = v.GetString("server.host")
	}
	if v.IsSet("kinect.driver") {
		c.Kinect.Driver = v.GetString("kinect.driver")
	}

	var err error
	if c.Server.Port, err = intOverride(v, "server.port", c.Server.Port); err != nil {
		return err
	}
	if c.Kinect.MockDevices, err = intOverride(v, "kinect.mock_devices", c.Kinect.MockDevices); err != nil {
		return err
	}
	if c.Kinect.DeviceIndex, err = deviceIndexOverride(v, "kinect.device_index", c.Kinect.DeviceIndex); err != nil {
		return err
	}
	if c.Kinect.UseIMU, err = boolOverride(v, "kinect.use_imu", c.Kinect.UseIMU); err != nil {
		return err
	}
	if c.Debug, err = boolOverride(v, "debug", c.Debug); err != nil {
		return err
	}
	return nil
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("無効な設定値 %s (%s)", verrs[0].Namespace(), verrs[0].Tag())
		}
		return err
	}

	if err := c.Kinect.Stream.Validate(); err != nil {
		return fmt.Errorf("無効なストリーム設定: %w", err)
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// intOverride は上書きされていれば整数として返す
func intOverride(v *viper.Viper, key string, current int) (int, error) {
	if !v.IsSet(key) {
		return current, nil
	}
	n, err := cast.ToIntE(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%s が整数ではありません: %q", key, v.GetString(key))
	}
	return n, nil
}

// deviceIndexOverride は上書きされていればデバイス番号として返す。
// uint32 に収まらない値は切り詰めずにエラーにする
func deviceIndexOverride(v *viper.Viper, key string, current uint32) (uint32, error) {
	if !v.IsSet(key) {
		return current, nil
	}
	n, err := cast.ToInt64E(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%s が整数ではありません: %q", key, v.GetString(key))
	}
	if n < 0 || n > math.MaxUint32 {
		return 0, fmt.Errorf("無効なデバイス番号: %d", n)
	}
	return uint32(n), nil
}

// boolOverride は上書きされていれば真偽値として返す
func boolOverride(v *viper.Viper, key string, current bool) (bool, error) {
	if !v.IsSet(key) {
		return current, nil
	}
	b, err := cast.ToBoolE(v.Get(key))
	if err != nil {
		return false, fmt.Errorf("%s が真偽値ではありません: %q", key, v.GetString(key))
	}
	return b, nil
}
