// Package kinect 深度カメラ1台のセッション管理を担う
//
// # 責務
// - デバイスハンドルの排他的な取得と解放
// - ストリーム設定の保持と、停止状態での置き換え
// - カメラとIMUの開始・停止の状態管理
// - キャプチャとIMUサンプルの取得（必要に応じて自動開始）
// - キャリブレーションの再取得
//
// # 使い分け
// このパッケージは以下の場合に使用する：
// - Azure Kinect 相当のデバイスからタイムスタンプやIMUデータを取得したい
// - 設定変更とストリーム開始の順序をライブラリ側に任せたい
//
// # 仕様
// - Device: デバイス番号とハンドルを保持し、開けた場合のみ初期化済みになる
// - ConfigStore: 書き換え前に必ずIMU、カメラの順で停止する
// - StreamController: カメラの Stopped/Running を管理する
// - IMUController: IMUの Stopped/Running を管理し、開始時に必要ならカメラを先に開始する
// - Manager: 上記をまとめたセッション。取得系メソッドは失敗時に番兵値を返す
// - ScanDevices: 接続中の全デバイスを番号順に列挙する。セッションが使用中のデバイスは開き直さない
// - Manager は内部でロックを取らない。複数ゴルーチンから使う場合は呼び出し側で直列化する
// - キャプチャとIMUサンプルの待機時間は既定で1秒
//
// # 前提要件
//   - 実機を使う場合は Azure Kinect Sensor SDK (libk4a) が必要
//     Ubuntu/Debian: sudo apt install libk4a1.4-dev
//   - 実機用ドライバーは k4a ビルドタグ付きでビルドする
//     go build -tags k4a ./...
//   - タグなしのビルドではモックドライバーのみ利用できる
package kinect
