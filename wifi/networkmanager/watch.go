//go:build linux

package networkmanager

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/shazow/wifilist/wifi"
)

// Watch forwards NetworkManager signals as feed events until ctx is done.
func (b *Backend) Watch(ctx context.Context, events chan<- wifi.Event) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", wifi.ErrNotAvailable)
	}
	defer conn.Close()

	matches := [][]dbus.MatchOption{
		{dbus.WithMatchInterface(nmDeviceIface), dbus.WithMatchMember("StateChanged")},
		{dbus.WithMatchInterface(nmWirelessIface)},
		{dbus.WithMatchInterface(nmSettingsIface)},
		{dbus.WithMatchInterface(propertiesIface), dbus.WithMatchMember("PropertiesChanged"), dbus.WithMatchPathNamespace(nmPath)},
	}
	for _, m := range matches {
		if err := conn.AddMatchSignal(m...); err != nil {
			return fmt.Errorf("failed to subscribe to signals: %w", err)
		}
	}

	signals := make(chan *dbus.Signal, 32)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				return fmt.Errorf("signal channel closed: %w", wifi.ErrOperationFailed)
			}
			e, ok := eventForSignal(sig)
			if !ok {
				continue
			}
			b.logger.Debug("networkmanager signal", "name", sig.Name, "event", e.Kind.String())
			select {
			case events <- e:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
