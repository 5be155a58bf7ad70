// Command server runs the vocabulary trainer HTTP API.
//
// Configuration comes from config.yaml (CONFIG_PATH), a .env file and the
// environment. Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/heartmarshall/myvocab-backend/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		slog.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
