package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// setupLogger builds the process logger. The level comes from --verbose or
// KMLORM_LOG_LEVEL, the format from KMLORM_LOG_FORMAT (text or json). A
// .env file in the working directory is read first when present.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	_ = godotenv.Load()

	lvl := slog.LevelWarn
	switch strings.ToLower(os.Getenv("KMLORM_LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.ToLower(os.Getenv("KMLORM_LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}
