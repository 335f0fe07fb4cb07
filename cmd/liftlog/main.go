package main

import (
	"context"
	"log/slog"
	"os"
)

func main() {
	if err := newRootCmd(os.Stderr).ExecuteContext(context.Background()); err != nil {
		log := slog.New(slog.NewTextHandler(os.Stderr, nil))
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}
