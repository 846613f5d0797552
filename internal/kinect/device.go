package kinect

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// QueryInstalledDeviceCount は接続されているデバイス数を返す。
// セッションを開いていなくても呼び出せ、副作用はない
func QueryInstalledDeviceCount(driver Driver) uint32 {
	if driver == nil {
		return 0
	}
	return driver.InstalledCount()
}

// Device は物理デバイス1台のハンドルを排他的に保持する
type Device struct {
	driver      Driver
	index       uint32
	handle      Handle
	serial      string
	initialized bool
	logger      *log.Entry
}

// NewDevice は未初期化のDeviceを作成する
func NewDevice(driver Driver, logger *log.Entry) *Device {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Device{
		driver: driver,
		index:  UnassignedIndex,
		logger: logger,
	}
}

// Open は指定番号のデバイスを開く
func (d *Device) Open(index uint32) error {
	if d.initialized {
		return nil
	}
	d.index = index

	count := QueryInstalledDeviceCount(d.driver)
	if count == 0 {
		return fmt.Errorf("接続されているデバイスがありません: %w", ErrDeviceUnavailable)
	}
	if index == UnassignedIndex {
		return fmt.Errorf("デバイス番号が割り当てられていません: %w", ErrDeviceUnavailable)
	}
	if index >= count {
		return fmt.Errorf("デバイス番号 %d は範囲外です (接続数: %d): %w", index, count, ErrDeviceUnavailable)
	}

	handle, err := d.driver.Open(index)
	if err != nil {
		return fmt.Errorf("デバイス %d のオープンに失敗: %v: %w", index, err, ErrDeviceUnavailable)
	}

	// シリアル番号は表示用なので取得に失敗しても続行する
	serial, err := handle.SerialNumber()
	if err != nil {
		d.logger.WithError(err).Warnln("シリアル番号の取得に失敗")
	}

	d.handle = handle
	d.serial = serial
	d.initialized = true
	d.logger.WithField("serial", serial).Infoln("デバイスを開きました")
	return nil
}

// Close はデバイスハンドルを解放する。未初期化の場合は何もしない
func (d *Device) Close() error {
	if !d.initialized {
		return nil
	}

	err := d.handle.Close()
	d.handle = nil
	d.initialized = false
	if err != nil {
		return fmt.Errorf("デバイス %d のクローズに失敗: %w", d.index, err)
	}

	d.logger.Infoln("デバイスを閉じました")
	return nil
}

// Initialized はデバイスを開けているかを返す
func (d *Device) Initialized() bool {
	return d.initialized
}

// Index はデバイス番号を返す
func (d *Device) Index() uint32 {
	return d.index
}

// SerialNumber は開いたデバイスのシリアル番号を返す
func (d *Device) SerialNumber() string {
	return d.serial
}
