// Package main はkinectbaseサーバーコマンドの実装です
package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"kinectbase/internal/cmd"
)

func main() {
	// serveサブコマンドを直接実行する
	serve := cmd.NewServeCmd()
	serve.Use = "server"
	serve.SilenceUsage = true

	if err := serve.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("サーバーの起動に失敗しました: %v", err)
		os.Exit(1)
	}
}
