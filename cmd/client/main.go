package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kilnworks/brickline/internal/client/cli"
	lg "github.com/kilnworks/brickline/internal/infra/log"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "API server base URL")
	statePath := flag.String("state", "brickline.db", "path to the local session database")
	flag.Parse()

	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	app, err := cli.NewApp(*serverURL, *statePath, zapLog)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
