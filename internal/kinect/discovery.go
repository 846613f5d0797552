package kinect

import (
	"context"
	"fmt"
)

// DeviceInfo は検出したデバイスの情報
type DeviceInfo struct {
	Index        uint32 `json:"index"`
	SerialNumber string `json:"serial_number,omitempty"`
	Available    bool   `json:"available"` // 開くことができたか
	InUse        bool   `json:"in_use"`    // このセッションが使用中か
}

// ScanDevices は接続されている全デバイスを番号順に検出する。
// session が使用中のデバイスは開き直さずにその情報を使う。
// それ以外のデバイスはシリアル番号の取得のために一時的に開いて閉じる
func ScanDevices(ctx context.Context, driver Driver, session *Manager) ([]DeviceInfo, error) {
	count := QueryInstalledDeviceCount(driver)
	devices := make([]DeviceInfo, 0, count)

	for index := uint32(0); index < count; index++ {
		// コンテキストのキャンセルをチェック
		select {
		case <-ctx.Done():
			return devices, ctx.Err()
		default:
		}

		if session != nil && session.IsInitialized() && session.device.Index() == index {
			devices = append(devices, DeviceInfo{
				Index:        index,
				SerialNumber: session.device.SerialNumber(),
				Available:    true,
				InUse:        true,
			})
			continue
		}

		devices = append(devices, inspectDevice(driver, index))
	}

	return devices, nil
}

// inspectDevice はデバイスを一時的に開いてシリアル番号を取得する
func inspectDevice(driver Driver, index uint32) DeviceInfo {
	info := DeviceInfo{Index: index}

	handle, err := driver.Open(index)
	if err != nil {
		// 他プロセスが使用中の場合も開けない
		return info
	}
	defer func() {
		_ = handle.Close()
	}()

	info.Available = true
	if serial, err := handle.SerialNumber(); err == nil {
		info.SerialNumber = serial
	}
	return info
}

// String はログ出力用の表現を返す
func (d DeviceInfo) String() string {
	return fmt.Sprintf("device[%d] serial=%s available=%t in_use=%t", d.Index, d.SerialNumber, d.Available, d.InUse)
}
