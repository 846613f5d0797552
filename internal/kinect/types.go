package kinect

import (
	"fmt"
	"math"
	"time"
)

// UnassignedIndex はデバイス番号が未割り当てであることを表す
const UnassignedIndex uint32 = math.MaxUint32

// NoTimestamp はタイムスタンプが取得できなかったことを表す番兵値（-1マイクロ秒）
const NoTimestamp = -time.Microsecond

// Status はコントローラーの動作状態を表す
type Status string

const (
	StatusStopped Status = "stopped" // 停止中
	StatusRunning Status = "running" // 動作中
)

// ImageFormat はカラー画像のフォーマット
type ImageFormat int

// 値はベンダードライバーの列挙値と一致させる
const (
	ImageFormatMJPG ImageFormat = iota
	ImageFormatNV12
	ImageFormatYUY2
	ImageFormatBGRA32
	ImageFormatDepth16
	ImageFormatIR16
)

var imageFormatNames = []string{"MJPG", "NV12", "YUY2", "BGRA32", "DEPTH16", "IR16"}

// ColorResolution はカラーカメラの解像度
type ColorResolution int

const (
	ColorResolutionOff ColorResolution = iota
	ColorResolution720P
	ColorResolution1080P
	ColorResolution1440P
	ColorResolution1536P
	ColorResolution2160P
	ColorResolution3072P
)

var colorResolutionNames = []string{"OFF", "720P", "1080P", "1440P", "1536P", "2160P", "3072P"}

// DepthMode は深度カメラの動作モード
type DepthMode int

const (
	DepthModeOff DepthMode = iota
	DepthModeNFOV2x2Binned
	DepthModeNFOVUnbinned
	DepthModeWFOV2x2Binned
	DepthModeWFOVUnbinned
	DepthModePassiveIR
)

var depthModeNames = []string{"OFF", "NFOV_2X2BINNED", "NFOV_UNBINNED", "WFOV_2X2BINNED", "WFOV_UNBINNED", "PASSIVE_IR"}

// FPS はカメラのフレームレート
type FPS int

const (
	FPS5 FPS = iota
	FPS15
	FPS30
)

var fpsNames = []string{"5", "15", "30"}

// WiredSyncMode は複数台同期における役割
type WiredSyncMode int

const (
	WiredSyncStandalone WiredSyncMode = iota
	WiredSyncMaster
	WiredSyncSubordinate
)

var wiredSyncModeNames = []string{"standalone", "master", "subordinate"}

// Config はストリーム設定を表す
type Config struct {
	ColorFormat                   ImageFormat     `json:"color_format" yaml:"color_format"`
	ColorResolution               ColorResolution `json:"color_resolution" yaml:"color_resolution"`
	DepthMode                     DepthMode       `json:"depth_mode" yaml:"depth_mode"`
	CameraFPS                     FPS             `json:"camera_fps" yaml:"camera_fps"`
	SynchronizedImagesOnly        bool            `json:"synchronized_images_only" yaml:"synchronized_images_only"`
	DepthDelayOffColorUsec        int32           `json:"depth_delay_off_color_usec" yaml:"depth_delay_off_color_usec"`
	WiredSyncMode                 WiredSyncMode   `json:"wired_sync_mode" yaml:"wired_sync_mode"`
	SubordinateDelayOffMasterUsec uint32          `json:"subordinate_delay_off_master_usec" yaml:"subordinate_delay_off_master_usec"`
	DisableStreamingIndicator     bool            `json:"disable_streaming_indicator" yaml:"disable_streaming_indicator"`
}

// DisableAllConfig は全ストリームを無効にした基準設定を返す
func DisableAllConfig() Config {
	return Config{
		ColorFormat:     ImageFormatMJPG,
		ColorResolution: ColorResolutionOff,
		DepthMode:       DepthModeOff,
		CameraFPS:       FPS30,
		WiredSyncMode:   WiredSyncStandalone,
	}
}

// DefaultConfig は起動時に適用されるデフォルト設定を返す
func DefaultConfig() Config {
	return NewConfig()
}

// ConfigOption は項目指定で設定を組み立てる際のオプション
type ConfigOption func(*Config)

// NewConfig は項目を指定して設定を組み立てる。
// 各項目はデフォルト値から始まり、オプションで上書きされたうえで
// 全ストリーム無効の基準設定に重ねられる。
func NewConfig(opts ...ConfigOption) Config {
	items := Config{
		ColorFormat:            ImageFormatBGRA32,
		ColorResolution:        ColorResolution720P,
		DepthMode:              DepthModeNFOVUnbinned,
		CameraFPS:              FPS30,
		SynchronizedImagesOnly: true,
		WiredSyncMode:          WiredSyncStandalone,
	}
	for _, opt := range opts {
		opt(&items)
	}

	cfg := DisableAllConfig()
	cfg.ColorFormat = items.ColorFormat
	cfg.ColorResolution = items.ColorResolution
	cfg.DepthMode = items.DepthMode
	cfg.CameraFPS = items.CameraFPS
	cfg.SynchronizedImagesOnly = items.SynchronizedImagesOnly
	cfg.DepthDelayOffColorUsec = items.DepthDelayOffColorUsec
	cfg.WiredSyncMode = items.WiredSyncMode
	cfg.SubordinateDelayOffMasterUsec = items.SubordinateDelayOffMasterUsec
	cfg.DisableStreamingIndicator = items.DisableStreamingIndicator
	return cfg
}

// WithColorFormat はカラー画像フォーマットを指定する
func WithColorFormat(f ImageFormat) ConfigOption {
	return func(c *Config) { c.ColorFormat = f }
}

// WithColorResolution はカラー解像度を指定する
func WithColorResolution(r ColorResolution) ConfigOption {
	return func(c *Config) { c.ColorResolution = r }
}

// WithDepthMode は深度モードを指定する
func WithDepthMode(m DepthMode) ConfigOption {
	return func(c *Config) { c.DepthMode = m }
}

// WithFPS はフレームレートを指定する
func WithFPS(fps FPS) ConfigOption {
	return func(c *Config) { c.CameraFPS = fps }
}

// WithSynchronizedImagesOnly は同期済み画像のみを返すかを指定する
func WithSynchronizedImagesOnly(only bool) ConfigOption {
	return func(c *Config) { c.SynchronizedImagesOnly = only }
}

// WithDepthDelay はカラーに対する深度の遅延（マイクロ秒）を指定する
func WithDepthDelay(usec int32) ConfigOption {
	return func(c *Config) { c.DepthDelayOffColorUsec = usec }
}

// WithWiredSync は同期モードとサブオーディネート遅延を指定する
func WithWiredSync(mode WiredSyncMode, subordinateDelayUsec uint32) ConfigOption {
	return func(c *Config) {
		c.WiredSyncMode = mode
		c.SubordinateDelayOffMasterUsec = subordinateDelayUsec
	}
}

// WithStreamingIndicatorDisabled はストリーミングLEDを無効にするかを指定する
func WithStreamingIndicatorDisabled(disabled bool) ConfigOption {
	return func(c *Config) { c.DisableStreamingIndicator = disabled }
}

// Validate はハードウェアが受け付けない組み合わせを検出する
func (c Config) Validate() error {
	if !c.ColorFormat.valid() {
		return fmt.Errorf("無効なカラーフォーマット: %d", int(c.ColorFormat))
	}
	if !c.ColorResolution.valid() {
		return fmt.Errorf("無効なカラー解像度: %d", int(c.ColorResolution))
	}
	if !c.DepthMode.valid() {
		return fmt.Errorf("無効な深度モード: %d", int(c.DepthMode))
	}
	if !c.CameraFPS.valid() {
		return fmt.Errorf("無効なフレームレート: %d", int(c.CameraFPS))
	}
	if !c.WiredSyncMode.valid() {
		return fmt.Errorf("無効な同期モード: %d", int(c.WiredSyncMode))
	}

	if c.CameraFPS == FPS30 {
		if c.ColorResolution == ColorResolution3072P {
			return fmt.Errorf("カラー解像度 %s は30fpsに対応していません", c.ColorResolution)
		}
		if c.DepthMode == DepthModeWFOVUnbinned {
			return fmt.Errorf("深度モード %s は30fpsに対応していません", c.DepthMode)
		}
	}
	if c.SynchronizedImagesOnly && (c.ColorResolution == ColorResolutionOff || c.DepthMode == DepthModeOff) {
		return fmt.Errorf("同期画像のみの設定にはカラーと深度の両方が必要です")
	}
	if c.WiredSyncMode != WiredSyncSubordinate && c.SubordinateDelayOffMasterUsec != 0 {
		return fmt.Errorf("サブオーディネート遅延はsubordinateモードでのみ指定できます")
	}

	return nil
}

// Capture は1回の取得で得られる画像セットを表す。存在しないプレーンはnil
type Capture struct {
	Color *Image
	Depth *Image
	IR    *Image
}

// Image は1枚の画像プレーンのメタデータ
type Image struct {
	Format          ImageFormat   `json:"format"`
	Width           int           `json:"width"`
	Height          int           `json:"height"`
	DeviceTimestamp time.Duration `json:"device_timestamp"`
}

// Float3 は3軸の測定値
type Float3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// IMUSample は加速度・ジャイロの1サンプル。
// AccTimestampUsec と GyroTimestampUsec はデバイス仕様上同じ値になる
type IMUSample struct {
	Temperature       float32 `json:"temperature"`
	AccSample         Float3  `json:"acc_sample"`
	AccTimestampUsec  uint64  `json:"acc_timestamp_usec"`
	GyroSample        Float3  `json:"gyro_sample"`
	GyroTimestampUsec uint64  `json:"gyro_timestamp_usec"`
}

// Intrinsics はカメラ内部パラメータの主要項目
type Intrinsics struct {
	Cx float32 `json:"cx"`
	Cy float32 `json:"cy"`
	Fx float32 `json:"fx"`
	Fy float32 `json:"fy"`
}

// CameraCalibration は1台のカメラのキャリブレーション
type CameraCalibration struct {
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	Intrinsics   Intrinsics `json:"intrinsics"`
	MetricRadius float32    `json:"metric_radius"`
}

// Calibration はデバイスと設定の組から得られるキャリブレーション
type Calibration struct {
	DepthMode       DepthMode         `json:"depth_mode"`
	ColorResolution ColorResolution   `json:"color_resolution"`
	Depth           CameraCalibration `json:"depth"`
	Color           CameraCalibration `json:"color"`
}
