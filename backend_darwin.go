//go:build darwin && !mock

package main

import (
	"log/slog"

	"github.com/shazow/wifilist/wifi"
	"github.com/shazow/wifilist/wifi/darwin"
)

func GetBackend(logger *slog.Logger) (wifi.Backend, error) {
	return darwin.New(logger)
}
