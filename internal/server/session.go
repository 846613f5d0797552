package server

import (
	"context"
	"sync"
	"time"

	"kinectbase/internal/kinect"
)

// Session はkinect.Managerへのアクセスを直列化する。
// HTTPハンドラーとサンプラーは必ずこれを経由してセッションを操作する
type Session struct {
	mu      sync.Mutex
	driver  kinect.Driver
	manager *kinect.Manager
}

// NewSession は新しいSessionを作成する
func NewSession(driver kinect.Driver, manager *kinect.Manager) *Session {
	return &Session{
		driver:  driver,
		manager: manager,
	}
}

// Do はロックを取った状態でfnを実行する
func (s *Session) Do(fn func(m *kinect.Manager)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.manager)
}

// InstalledCount は接続されているデバイス数を返す
func (s *Session) InstalledCount() uint32 {
	return kinect.QueryInstalledDeviceCount(s.driver)
}

// ScanDevices は接続されている全デバイスを検出する
func (s *Session) ScanDevices(ctx context.Context) ([]kinect.DeviceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return kinect.ScanDevices(ctx, s.driver, s.manager)
}

// CameraTimestamp はカメラのデバイスタイムスタンプを返す
func (s *Session) CameraTimestamp() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.CameraTimestamp()
}

// IMUTimestamp はIMUのタイムスタンプを返す
func (s *Session) IMUTimestamp() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.IMUTimestamp()
}

// Close はセッションを終了する
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.Close()
}
