package kinect

import "errors"

var (
	// ErrDeviceUnavailable はデバイスが接続されていない、または番号が範囲外であることを表す
	ErrDeviceUnavailable = errors.New("デバイスが利用できません")

	// ErrNotInitialized はデバイスを開けていないセッションで開始が要求されたことを表す
	ErrNotInitialized = errors.New("デバイスが初期化されていません")

	// ErrCaptureTimeout は待機時間内にキャプチャが得られなかったことを表す
	ErrCaptureTimeout = errors.New("キャプチャの取得がタイムアウトしました")

	// ErrSampleTimeout は待機時間内にIMUサンプルが得られなかったことを表す
	ErrSampleTimeout = errors.New("IMUサンプルの取得がタイムアウトしました")

	// ErrDriverUnavailable はベンダードライバーが利用できないことを表す
	ErrDriverUnavailable = errors.New("ベンダードライバーが利用できません")
)
