package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
)

// Version is reported by --version and the MCP handshake.
const Version = "1.0.0"

func main() {
	if err := newCLI(os.Stdout).Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
