//go:build mock

package main

import (
	"log/slog"

	"github.com/shazow/wifilist/wifi"
	"github.com/shazow/wifilist/wifi/mock"
)

func GetBackend(logger *slog.Logger) (wifi.Backend, error) {
	logger.Info("using mock backend")
	return mock.New()
}
