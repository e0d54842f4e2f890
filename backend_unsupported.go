//go:build !linux && !darwin && !mock

package main

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/shazow/wifilist/wifi"
)

// GetBackend returns an error for unsupported operating systems.
func GetBackend(logger *slog.Logger) (wifi.Backend, error) {
	return nil, fmt.Errorf("%s: %w", runtime.GOOS, wifi.ErrNotSupported)
}
