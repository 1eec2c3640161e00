package utils

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env from the working directory so SSC_ variables can
// override configuration. A missing file is fine.
func LoadEnv() {
	err := godotenv.Load()
	if err == nil {
		slog.Debug("loaded .env file")
		return
	}
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no .env file found, continuing")
		return
	}
	slog.Warn("could not read .env file", "error", err)
}

// SetupLogger installs the default text logger on stderr.
func SetupLogger(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
