package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"kinectbase/internal/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		log.Errorln(err)
		os.Exit(1)
	}
}
