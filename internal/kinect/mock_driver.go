package kinect

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// imuSamplePeriod はモックIMUのサンプル間隔（1.6kHz相当）
const imuSamplePeriod = 625 * time.Microsecond

// MockDriver はテストやデモ用のモックドライバー実装
type MockDriver struct {
	mu      sync.Mutex
	devices int
	handles map[uint32]*MockHandle
}

// NewMockDriver は指定数のデバイスが接続されたMockDriverを作成する
func NewMockDriver(devices int) *MockDriver {
	return &MockDriver{
		devices: devices,
		handles: make(map[uint32]*MockHandle),
	}
}

// InstalledCount は接続されているモックデバイス数を返す
func (d *MockDriver) InstalledCount() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return uint32(d.devices)
}

// Open はモックデバイスを開く。同じ番号を二重に開くことはできない
func (d *MockDriver) Open(index uint32) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if int64(index) >= int64(d.devices) {
		return nil, fmt.Errorf("モック: デバイス %d は存在しません", index)
	}
	if h, exists := d.handles[index]; exists && !h.closed {
		return nil, fmt.Errorf("モック: デバイス %d は既に開かれています", index)
	}

	h := &MockHandle{
		serial: fmt.Sprintf("%012d", 1000+index),
	}
	d.handles[index] = h
	return h, nil
}

// SetDeviceCount はテスト用に接続デバイス数を変更する
func (d *MockDriver) SetDeviceCount(devices int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devices = devices
}

// Handle はテスト用に開かれたハンドルを返す
func (d *MockDriver) Handle(index uint32) (*MockHandle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, exists := d.handles[index]
	return h, exists
}

// MockCalls はモックハンドルに発行されたハードウェア呼び出しの回数
type MockCalls struct {
	StartCameras int
	StopCameras  int
	StartIMU     int
	StopIMU      int
	GetCapture   int
	GetIMUSample int
	Calibration  int
	Close        int
}

// MockHandle はモックデバイスのハンドル
type MockHandle struct {
	mu sync.Mutex

	serial        string
	closed        bool
	camerasActive bool
	imuActive     bool
	config        Config

	frame   int64
	imuTick int64

	calls MockCalls

	// テスト制御用
	shouldFailStartCameras bool
	shouldFailStartIMU     bool
	shouldFailStop         bool
	captureTimeout         bool
	sampleTimeout          bool
}

// Close はハンドルを閉じる
func (h *MockHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls.Close++
	if h.closed {
		return errors.New("モック: ハンドルは既に閉じられています")
	}
	h.closed = true
	h.camerasActive = false
	h.imuActive = false
	return nil
}

// StartCameras はモックカメラを開始する
func (h *MockHandle) StartCameras(cfg Config) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls.StartCameras++
	if h.closed {
		return errors.New("モック: ハンドルは閉じられています")
	}
	if h.shouldFailStartCameras {
		return errors.New("モック: カメラ開始に失敗")
	}
	if h.camerasActive {
		return errors.New("モック: カメラは既に開始されています")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("モック: 設定が無効: %w", err)
	}

	h.config = cfg
	h.camerasActive = true
	return nil
}

// StopCameras はモックカメラを停止する
func (h *MockHandle) StopCameras() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls.StopCameras++
	h.camerasActive = false
	if h.shouldFailStop {
		return errors.New("モック: カメラ停止に失敗")
	}
	return nil
}

// StartIMU はモックIMUを開始する。カメラが動作中でなければ失敗する
func (h *MockHandle) StartIMU() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls.StartIMU++
	if h.shouldFailStartIMU {
		return errors.New("モック: IMU開始に失敗")
	}
	if !h.camerasActive {
		return errors.New("モック: カメラが動作していないためIMUを開始できません")
	}
	if h.imuActive {
		return errors.New("モック: IMUは既に開始されています")
	}

	h.imuActive = true
	return nil
}

// StopIMU はモックIMUを停止する
func (h *MockHandle) StopIMU() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls.StopIMU++
	h.imuActive = false
	if h.shouldFailStop {
		return errors.New("モック: IMU停止に失敗")
	}
	return nil
}

// GetCapture はモックキャプチャを返す。タイムスタンプはフレーム周期ごとに進む
func (h *MockHandle) GetCapture(_ time.Duration) (Capture, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls.GetCapture++
	if !h.camerasActive {
		return Capture{}, errors.New("モック: カメラが動作していません")
	}
	if h.captureTimeout {
		return Capture{}, ErrCaptureTimeout
	}

	h.frame++
	period := time.Second / time.Duration(h.config.CameraFPS.Hz())
	ts := time.Duration(h.frame) * period

	var capture Capture
	if w, ht := h.config.ColorResolution.Size(); w > 0 {
		capture.Color = &Image{Format: h.config.ColorFormat, Width: w, Height: ht, DeviceTimestamp: ts}
	}
	if w, ht := h.config.DepthMode.Size(); w > 0 {
		if h.config.DepthMode != DepthModePassiveIR {
			capture.Depth = &Image{Format: ImageFormatDepth16, Width: w, Height: ht, DeviceTimestamp: ts}
		}
		capture.IR = &Image{Format: ImageFormatIR16, Width: w, Height: ht, DeviceTimestamp: ts}
	}
	return capture, nil
}

// GetIMUSample はモックIMUサンプルを返す
func (h *MockHandle) GetIMUSample(_ time.Duration) (IMUSample, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls.GetIMUSample++
	if !h.imuActive {
		return IMUSample{}, errors.New("モック: IMUが動作していません")
	}
	if h.sampleTimeout {
		return IMUSample{}, ErrSampleTimeout
	}

	h.imuTick++
	ts := uint64(time.Duration(h.imuTick) * imuSamplePeriod / time.Microsecond)
	return IMUSample{
		Temperature:       31.5,
		AccSample:         Float3{X: 0.01, Y: -9.81, Z: 0.02},
		AccTimestampUsec:  ts,
		GyroSample:        Float3{X: 0.001, Y: 0.002, Z: -0.001},
		GyroTimestampUsec: ts,
	}, nil
}

// Calibration は解像度から算出したモックのキャリブレーションを返す
func (h *MockHandle) Calibration(depthMode DepthMode, resolution ColorResolution) (Calibration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls.Calibration++
	if h.closed {
		return Calibration{}, errors.New("モック: ハンドルは閉じられています")
	}

	return Calibration{
		DepthMode:       depthMode,
		ColorResolution: resolution,
		Depth:           mockCameraCalibration(depthMode.Size()),
		Color:           mockCameraCalibration(resolution.Size()),
	}, nil
}

// SerialNumber はモックのシリアル番号を返す
func (h *MockHandle) SerialNumber() (string, error) {
	return h.serial, nil
}

func mockCameraCalibration(width, height int) CameraCalibration {
	if width == 0 {
		return CameraCalibration{}
	}
	return CameraCalibration{
		Width:  width,
		Height: height,
		Intrinsics: Intrinsics{
			Cx: float32(width) / 2,
			Cy: float32(height) / 2,
			Fx: float32(width) / 2,
			Fy: float32(width) / 2,
		},
		MetricRadius: 1.7,
	}
}

// Calls はハードウェア呼び出しの回数を返す
func (h *MockHandle) Calls() MockCalls {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

// CamerasActive はモックカメラが動作中かを返す
func (h *MockHandle) CamerasActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.camerasActive
}

// IMUActive はモックIMUが動作中かを返す
func (h *MockHandle) IMUActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.imuActive
}

// Closed はハンドルが閉じられているかを返す
func (h *MockHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// AppliedConfig は最後にカメラ開始に使われた設定を返す
func (h *MockHandle) AppliedConfig() Config {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.config
}

// SetShouldFailStartCameras はテスト用にカメラ開始失敗を設定する
func (h *MockHandle) SetShouldFailStartCameras(shouldFail bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shouldFailStartCameras = shouldFail
}

// SetShouldFailStartIMU はテスト用にIMU開始失敗を設定する
func (h *MockHandle) SetShouldFailStartIMU(shouldFail bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shouldFailStartIMU = shouldFail
}

// SetShouldFailStop はテスト用に停止失敗を設定する
func (h *MockHandle) SetShouldFailStop(shouldFail bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shouldFailStop = shouldFail
}

// SetCaptureTimeout はテスト用にキャプチャ取得をタイムアウトさせる
func (h *MockHandle) SetCaptureTimeout(timeout bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.captureTimeout = timeout
}

// SetSampleTimeout はテスト用にIMUサンプル取得をタイムアウトさせる
func (h *MockHandle) SetSampleTimeout(timeout bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sampleTimeout = timeout
}
