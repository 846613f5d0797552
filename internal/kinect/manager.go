package kinect

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DefaultWaitTimeout はキャプチャとIMUサンプル取得の既定の待機時間
const DefaultWaitTimeout = 1 * time.Second

// Options はManagerの作成オプション
type Options struct {
	DeviceIndex uint32 // 開くデバイス番号
	UseIMU      bool   // IMUを使う意図があるか（これ自体ではIMUを開始しない）

	CaptureTimeout time.Duration // キャプチャ取得の待機時間
	IMUTimeout     time.Duration // IMUサンプル取得の待機時間

	// 初期設定。nilの場合はDefaultConfig
	Config *Config

	Logger *log.Logger
}

// SessionStatus はセッションの状態のスナップショット
type SessionStatus struct {
	ID            string `json:"id"`
	DeviceIndex   uint32 `json:"device_index"`
	SerialNumber  string `json:"serial_number,omitempty"`
	UseIMU        bool   `json:"use_imu"`
	Initialized   bool   `json:"initialized"`
	CameraStatus  Status `json:"camera_status"`
	IMUStatus     Status `json:"imu_status"`
	Configuration Config `json:"configuration"`
}

// Manager はデバイス1台のセッションを管理する。
//
// 内部でロックを取らないため、複数のゴルーチンから使う場合は呼び出し側で直列化すること
type Manager struct {
	id     string
	useIMU bool

	device *Device
	store  *ConfigStore
	camera *StreamController
	imu    *IMUController

	calibration    Calibration
	hasCalibration bool

	captureTimeout time.Duration
	imuTimeout     time.Duration

	logger *log.Entry
}

// NewManager はデバイスを開き、初期設定を適用したManagerを作成する。
//
// デバイスを開けなかった場合も未初期化のManagerを返し、
// ErrDeviceUnavailable をラップしたエラーを同時に返す。
// 未初期化のManagerでは開始系の操作が ErrNotInitialized で失敗し、
// タイムスタンプ取得は NoTimestamp を返す
func NewManager(driver Driver, opts Options) (*Manager, error) {
	if opts.CaptureTimeout <= 0 {
		opts.CaptureTimeout = DefaultWaitTimeout
	}
	if opts.IMUTimeout <= 0 {
		opts.IMUTimeout = DefaultWaitTimeout
	}
	base := opts.Logger
	if base == nil {
		base = log.StandardLogger()
	}

	id := uuid.New().String()
	logger := base.WithFields(log.Fields{
		"session": id,
		"device":  opts.DeviceIndex,
	})

	m := &Manager{
		id:             id,
		useIMU:         opts.UseIMU,
		captureTimeout: opts.CaptureTimeout,
		imuTimeout:     opts.IMUTimeout,
		logger:         logger,
	}

	m.device = NewDevice(driver, logger)
	m.store = NewConfigStore(DisableAllConfig(), m.stopAll)
	m.camera = NewStreamController(m.device, m.store, logger)
	m.imu = NewIMUController(m.device, m.camera, logger)

	openErr := m.device.Open(opts.DeviceIndex)
	if openErr != nil {
		logger.WithError(openErr).Warnln("デバイスの初期化に失敗")
	}

	if opts.Config != nil {
		m.store.Set(*opts.Config)
	} else {
		m.store.Set(DefaultConfig())
	}

	return m, openErr
}

// stopAll は設定変更と終了処理で使う一括停止
func (m *Manager) stopAll() {
	m.imu.StopAll()
}

// ID はセッションIDを返す
func (m *Manager) ID() string {
	return m.id
}

// UseIMU は作成時に指定されたIMU利用の意図を返す
func (m *Manager) UseIMU() bool {
	return m.useIMU
}

// SetConfiguration は両コントローラーを停止してから設定を置き換える
func (m *Manager) SetConfiguration(cfg Config) {
	m.store.Set(cfg)
	m.hasCalibration = false
	m.logger.Debugln("設定を更新しました")
}

// SetConfigurationItems は項目指定で設定を置き換える
func (m *Manager) SetConfigurationItems(opts ...ConfigOption) {
	m.store.SetItems(opts...)
	m.hasCalibration = false
	m.logger.Debugln("設定を更新しました")
}

// Configuration は現在の設定を返す
func (m *Manager) Configuration() Config {
	return m.store.Get()
}

// IsInitialized はデバイスを開けているかを返す
func (m *Manager) IsInitialized() bool {
	return m.device.Initialized()
}

// IsCameraRunning はカメラが動作中かを返す
func (m *Manager) IsCameraRunning() bool {
	return m.camera.Running()
}

// IsIMURunning はIMUが動作中かを返す
func (m *Manager) IsIMURunning() bool {
	return m.imu.Running()
}

// StartCamera はカメラを開始する
func (m *Manager) StartCamera() error {
	return m.camera.Start()
}

// StopCamera はカメラを停止する。IMUが動作中の場合は先にIMUを停止する
func (m *Manager) StopCamera() {
	m.imu.StopAll()
}

// StartIMU はIMUを開始する。必要であればカメラも開始する
func (m *Manager) StartIMU() error {
	return m.imu.Start()
}

// StopIMU はIMUを停止する。カメラは動作したまま
func (m *Manager) StopIMU() {
	m.imu.Stop()
}

// Capture はカメラを必要に応じて開始し、キャプチャを1件取得する
func (m *Manager) Capture() (Capture, bool) {
	if !m.camera.Running() {
		if err := m.camera.Start(); err != nil {
			m.logger.WithError(err).Debugln("キャプチャ前のカメラ開始に失敗")
			return Capture{}, false
		}
	}

	capture, err := m.device.handle.GetCapture(m.captureTimeout)
	if err != nil {
		if errors.Is(err, ErrCaptureTimeout) {
			m.logger.Debugln("キャプチャ待機がタイムアウト")
		} else {
			m.logger.WithError(err).Warnln("キャプチャの取得に失敗")
		}
		return Capture{}, false
	}

	return capture, true
}

// CameraTimestamp はキャプチャのIR画像のデバイスタイムスタンプを返す。
// 取得できない場合は NoTimestamp を返す
func (m *Manager) CameraTimestamp() time.Duration {
	capture, ok := m.Capture()
	if !ok || capture.IR == nil {
		return NoTimestamp
	}
	return capture.IR.DeviceTimestamp
}

// IMUSample はIMUを必要に応じて開始し、サンプルを1件取得する
func (m *Manager) IMUSample() (IMUSample, bool) {
	if !m.imu.Running() {
		if err := m.imu.Start(); err != nil {
			m.logger.WithError(err).Debugln("サンプル取得前のIMU開始に失敗")
			return IMUSample{}, false
		}
	}

	sample, err := m.device.handle.GetIMUSample(m.imuTimeout)
	if err != nil {
		if errors.Is(err, ErrSampleTimeout) {
			m.logger.Debugln("IMUサンプル待機がタイムアウト")
		} else {
			m.logger.WithError(err).Warnln("IMUサンプルの取得に失敗")
		}
		return IMUSample{}, false
	}

	return sample, true
}

// IMUTimestamp はIMUサンプルの加速度タイムスタンプを返す。
// 取得できない場合は NoTimestamp を返す
func (m *Manager) IMUTimestamp() time.Duration {
	sample, ok := m.IMUSample()
	if !ok {
		return NoTimestamp
	}
	// 加速度とジャイロのタイムスタンプは同じ
	return time.Duration(sample.AccTimestampUsec) * time.Microsecond
}

// RefreshCalibration は現在の設定の深度モードとカラー解像度からキャリブレーションを再取得する
func (m *Manager) RefreshCalibration() (Calibration, error) {
	if !m.device.Initialized() {
		return Calibration{}, fmt.Errorf("キャリブレーションを取得できません: %w", ErrNotInitialized)
	}

	cfg := m.store.Get()
	calib, err := m.device.handle.Calibration(cfg.DepthMode, cfg.ColorResolution)
	if err != nil {
		return Calibration{}, fmt.Errorf("キャリブレーションの取得に失敗: %w", err)
	}

	m.calibration = calib
	m.hasCalibration = true
	return calib, nil
}

// Calibration は最後に取得したキャリブレーションを返す。
// 設定変更後は RefreshCalibration を呼ぶまで取得できない
func (m *Manager) Calibration() (Calibration, bool) {
	return m.calibration, m.hasCalibration
}

// Status はセッションの状態を返す
func (m *Manager) Status() SessionStatus {
	return SessionStatus{
		ID:            m.id,
		DeviceIndex:   m.device.Index(),
		SerialNumber:  m.device.SerialNumber(),
		UseIMU:        m.useIMU,
		Initialized:   m.device.Initialized(),
		CameraStatus:  m.camera.Status(),
		IMUStatus:     m.imu.Status(),
		Configuration: m.store.Get(),
	}
}

// Close は両コントローラーを停止してからデバイスを解放する
func (m *Manager) Close() error {
	m.stopAll()
	return m.device.Close()
}
