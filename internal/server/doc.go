// Package server は、デバイスセッションをHTTP APIとして公開します。
//
// このパッケージは、HTTPサーバーの起動、ルーティング、
// セッションへのアクセスの直列化、サンプラーの起動を担当します。
//
// 責務:
//   - HTTPサーバーの起動と管理
//   - kinect.Manager への排他的なアクセス
//   - 設定変更、開始・停止、タイムスタンプ取得のリクエスト処理
//   - サンプラーの起動と停止
//
// 仕様:
//   - ルーティングは api/openapi.yaml から生成した internal/generated のginサーバーを使用
//   - 定義に一致しないリクエストはハンドラーに届く前に400で拒否する
//   - サーバーとサンプラーはerrgroupで並行して動かす
//   - SIGINT/SIGTERMでグレースフルシャットダウンし、デバイスを解放する
//   - HTTPの停止がタイムアウトしてもデバイスは必ず解放する
//   - タイムスタンプを取得できない場合は timestamp_usec を -1 として返す
package server
