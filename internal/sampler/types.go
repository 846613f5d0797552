package sampler

import (
	"time"
)

// Sample は1回のポーリングで得たタイムスタンプ
type Sample struct {
	Time                time.Time `json:"time"`                  // 取得時刻（ホスト側）
	CameraTimestampUsec int64     `json:"camera_timestamp_usec"` // カメラのデバイスタイムスタンプ。取得失敗時は-1
	IMUTimestampUsec    int64     `json:"imu_timestamp_usec"`    // IMUのタイムスタンプ。取得失敗時またはIMU未使用時は-1
}

// Config はサンプラー設定
type Config struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ポーリング間隔 (デフォルト: 100ミリ秒)
	Interval time.Duration `json:"interval" yaml:"interval" validate:"gt=0"`

	// 保持するサンプル数
	BufferSize int `json:"buffer_size" yaml:"buffer_size" validate:"min=1,max=100000"`

	// IMUタイムスタンプも取得するか
	UseIMU bool `json:"use_imu" yaml:"use_imu"`
}

// Status はサンプラーのステータス
type Status string

// Status の定数定義
const (
	StatusRunning  Status = "running"  // 動作中
	StatusStopped  Status = "stopped"  // 停止
	StatusDisabled Status = "disabled" // 無効
)

// StatusInfo はサンプラーの状態情報
type StatusInfo struct {
	Status         Status    `json:"status"`
	Interval       string    `json:"interval"`
	BufferSize     int       `json:"buffer_size"`
	Buffered       int       `json:"buffered"`
	TotalSamples   uint64    `json:"total_samples"`
	CameraFailures uint64    `json:"camera_failures"`
	IMUFailures    uint64    `json:"imu_failures"`
	LastSample     time.Time `json:"last_sample"`
}

// DefaultConfig はデフォルトのサンプラー設定を返す
func DefaultConfig() Config {
	return Config{
		Enabled:    false,
		Interval:   100 * time.Millisecond,
		BufferSize: 600, // 1分分（100ミリ秒間隔）
		UseIMU:     false,
	}
}
