package kinect

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ConfigStore は現在のストリーム設定を保持する。
// 書き換えの前に必ず両コントローラーを停止する
type ConfigStore struct {
	active  Config
	stopAll func()
}

// NewConfigStore は新しいConfigStoreを作成する
func NewConfigStore(initial Config, stopAll func()) *ConfigStore {
	return &ConfigStore{
		active:  initial,
		stopAll: stopAll,
	}
}

// Set は両コントローラーを停止してから設定を置き換える
func (s *ConfigStore) Set(cfg Config) {
	if s.stopAll != nil {
		s.stopAll()
	}
	s.active = cfg
}

// SetItems は項目指定で組み立てた設定に置き換える
func (s *ConfigStore) SetItems(opts ...ConfigOption) {
	s.Set(NewConfig(opts...))
}

// Get は現在の設定を返す
func (s *ConfigStore) Get() Config {
	return s.active
}

// StreamController はカメラストリームの開始・停止を管理する
type StreamController struct {
	device *Device
	store  *ConfigStore
	status Status
	logger *log.Entry

	// stopDependent はカメラより先に止める必要のあるIMUの停止処理
	stopDependent func()
}

// NewStreamController は停止状態のStreamControllerを作成する
func NewStreamController(device *Device, store *ConfigStore, logger *log.Entry) *StreamController {
	return &StreamController{
		device: device,
		store:  store,
		status: StatusStopped,
		logger: logger,
	}
}

// Start は現在の設定でカメラを開始する。既に動作中の場合は何もしない
func (c *StreamController) Start() error {
	if c.status == StatusRunning {
		return nil
	}
	if !c.device.Initialized() {
		return fmt.Errorf("カメラを開始できません: %w", ErrNotInitialized)
	}

	cfg := c.store.Get()
	if err := c.device.handle.StartCameras(cfg); err != nil {
		return fmt.Errorf("カメラの開始に失敗: %w", err)
	}

	c.status = StatusRunning
	c.logger.WithFields(log.Fields{
		"color":     cfg.ColorResolution,
		"depth":     cfg.DepthMode,
		"fps":       cfg.CameraFPS,
		"wiredSync": cfg.WiredSyncMode,
	}).Infoln("カメラを開始しました")
	return nil
}

// Stop はカメラを停止する。IMUが登録されていれば先にIMUを停止する。
// ハードウェアの停止が失敗しても停止状態に遷移し、呼び出し元には失敗を返さない
func (c *StreamController) Stop() {
	if c.status == StatusStopped {
		return
	}
	if c.stopDependent != nil {
		c.stopDependent()
	}

	if err := c.device.handle.StopCameras(); err != nil {
		c.logger.WithError(err).Warnln("カメラの停止でエラーが発生")
	}

	c.status = StatusStopped
	c.logger.Infoln("カメラを停止しました")
}

// Status は現在の状態を返す
func (c *StreamController) Status() Status {
	return c.status
}

// Running はカメラが動作中かを返す
func (c *StreamController) Running() bool {
	return c.status == StatusRunning
}

// IMUController はIMUの開始・停止を管理する。
// IMUはカメラが動作中でなければ動かせない
type IMUController struct {
	device *Device
	camera *StreamController
	status Status
	logger *log.Entry
}

// NewIMUController は停止状態のIMUControllerを作成する。
// cameraの停止時にはIMUが先に停止される
func NewIMUController(device *Device, camera *StreamController, logger *log.Entry) *IMUController {
	c := &IMUController{
		device: device,
		camera: camera,
		status: StatusStopped,
		logger: logger,
	}
	camera.stopDependent = c.Stop
	return c
}

// Start はIMUを開始する。カメラが停止中の場合は先にカメラを開始する
func (c *IMUController) Start() error {
	if c.status == StatusRunning {
		return nil
	}
	if !c.device.Initialized() {
		return fmt.Errorf("IMUを開始できません: %w", ErrNotInitialized)
	}

	// IMUが動作中ならカメラも動作中、をここだけで保証する
	if err := c.camera.Start(); err != nil {
		return fmt.Errorf("IMUの前提となるカメラの開始に失敗: %w", err)
	}

	if err := c.device.handle.StartIMU(); err != nil {
		return fmt.Errorf("IMUの開始に失敗: %w", err)
	}

	c.status = StatusRunning
	c.logger.Infoln("IMUを開始しました")
	return nil
}

// Stop はIMUを停止する。カメラは停止しない
func (c *IMUController) Stop() {
	if c.status == StatusStopped {
		return
	}

	if err := c.device.handle.StopIMU(); err != nil {
		c.logger.WithError(err).Warnln("IMUの停止でエラーが発生")
	}

	c.status = StatusStopped
	c.logger.Infoln("IMUを停止しました")
}

// StopAll はIMU、カメラの順に停止する。未初期化の場合は何もしない
func (c *IMUController) StopAll() {
	if !c.device.Initialized() {
		return
	}

	c.Stop()
	c.camera.Stop()
}

// Status は現在の状態を返す
func (c *IMUController) Status() Status {
	return c.status
}

// Running はIMUが動作中かを返す
func (c *IMUController) Running() bool {
	return c.status == StatusRunning
}
