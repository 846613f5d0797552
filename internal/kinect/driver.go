package kinect

import (
	"fmt"
	"time"
)

// Driver はベンダードライバーのうちデバイス列挙と取得を担う部分
type Driver interface {
	// InstalledCount は接続されているデバイス数を返す
	InstalledCount() uint32

	// Open は指定番号のデバイスを排他的に開く
	Open(index uint32) (Handle, error)
}

// Handle は開いたデバイス1台に対するハードウェア操作
type Handle interface {
	Close() error

	StartCameras(cfg Config) error
	StopCameras() error

	StartIMU() error
	StopIMU() error

	// GetCapture は最大timeoutだけ待って1件のキャプチャを返す。
	// 時間内に得られない場合は ErrCaptureTimeout を返す
	GetCapture(timeout time.Duration) (Capture, error)

	// GetIMUSample は最大timeoutだけ待って1件のIMUサンプルを返す。
	// 時間内に得られない場合は ErrSampleTimeout を返す
	GetIMUSample(timeout time.Duration) (IMUSample, error)

	Calibration(depthMode DepthMode, resolution ColorResolution) (Calibration, error)
	SerialNumber() (string, error)
}

// ドライバー名
const (
	DriverMock = "mock"
	DriverK4A  = "k4a"
)

// OpenDriver は名前からドライバーを作成する。
// mockDevices はモックドライバーが報告するデバイス数
func OpenDriver(name string, mockDevices int) (Driver, error) {
	switch name {
	case DriverMock, "":
		return NewMockDriver(mockDevices), nil
	case DriverK4A:
		return NewK4ADriver()
	default:
		return nil, fmt.Errorf("サポートされていないドライバー: %s", name)
	}
}
