package kinect

import (
	"errors"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
)

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return log.NewEntry(logger)
}

func TestQueryInstalledDeviceCount(t *testing.T) {
	driver := NewMockDriver(2)

	if got := QueryInstalledDeviceCount(driver); got != 2 {
		t.Errorf("Expected 2 devices, got %d", got)
	}

	driver.SetDeviceCount(0)
	if got := QueryInstalledDeviceCount(driver); got != 0 {
		t.Errorf("Expected 0 devices, got %d", got)
	}

	if got := QueryInstalledDeviceCount(nil); got != 0 {
		t.Errorf("Expected 0 devices for nil driver, got %d", got)
	}

	// 問い合わせでデバイスが開かれないこと
	if _, exists := driver.Handle(0); exists {
		t.Error("Expected no handle to be opened by the count query")
	}
}

func TestDevice_OpenErrors(t *testing.T) {
	testCases := []struct {
		name    string
		devices int
		index   uint32
	}{
		{"デバイスなし", 0, 0},
		{"未割り当て番号", 2, UnassignedIndex},
		{"範囲外の番号", 2, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			device := NewDevice(NewMockDriver(tc.devices), testLogger())

			err := device.Open(tc.index)
			if !errors.Is(err, ErrDeviceUnavailable) {
				t.Fatalf("Expected ErrDeviceUnavailable, got %v", err)
			}
			if device.Initialized() {
				t.Error("Expected device to remain uninitialized")
			}
		})
	}
}

func TestDevice_OpenClose(t *testing.T) {
	driver := NewMockDriver(2)
	device := NewDevice(driver, testLogger())

	if err := device.Open(1); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !device.Initialized() {
		t.Fatal("Expected device to be initialized")
	}
	if device.Index() != 1 {
		t.Errorf("Expected index 1, got %d", device.Index())
	}
	if device.SerialNumber() == "" {
		t.Error("Expected serial number to be set")
	}

	handle, _ := driver.Handle(1)

	if err := device.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if device.Initialized() {
		t.Error("Expected device to be uninitialized after close")
	}

	// 二回目のCloseは何もしない
	if err := device.Close(); err != nil {
		t.Fatalf("Second close failed: %v", err)
	}
	if calls := handle.Calls(); calls.Close != 1 {
		t.Errorf("Expected handle to be closed once, got %d", calls.Close)
	}
}

func TestDevice_CloseUninitialized(t *testing.T) {
	device := NewDevice(NewMockDriver(0), testLogger())

	if err := device.Close(); err != nil {
		t.Fatalf("Close on uninitialized device failed: %v", err)
	}
}

func TestDevice_ReopenAfterClose(t *testing.T) {
	driver := NewMockDriver(1)
	device := NewDevice(driver, testLogger())

	if err := device.Open(0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// 別セッションから同じデバイスは開けない
	other := NewDevice(driver, testLogger())
	if err := other.Open(0); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Expected ErrDeviceUnavailable for a second session, got %v", err)
	}

	if err := device.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := other.Open(0); err != nil {
		t.Fatalf("Open after release failed: %v", err)
	}
}
