package networkmanager

import (
	"github.com/godbus/dbus/v5"

	"github.com/shazow/wifilist/wifi"
)

const (
	nmDest          = "org.freedesktop.NetworkManager"
	nmPath          = dbus.ObjectPath("/org/freedesktop/NetworkManager")
	nmIface         = "org.freedesktop.NetworkManager"
	nmDeviceIface   = nmIface + ".Device"
	nmWirelessIface = nmIface + ".Device.Wireless"
	nmSettingsIface = nmIface + ".Settings"
	propertiesIface = "org.freedesktop.DBus.Properties"
)

// NMDeviceStateReason values that mean the credentials were refused.
const (
	reasonNoSecrets            = 7
	reasonSupplicantDisconnect = 8
)

// eventForSignal maps a NetworkManager signal onto a feed event.
func eventForSignal(sig *dbus.Signal) (wifi.Event, bool) {
	switch sig.Name {
	case nmDeviceIface + ".StateChanged":
		if len(sig.Body) == 3 {
			newState, _ := sig.Body[0].(uint32)
			reason, _ := sig.Body[2].(uint32)
			if reason == reasonNoSecrets || (newState == deviceStateFailed && reason == reasonSupplicantDisconnect) {
				return wifi.Event{Kind: wifi.EventAuthFailure}, true
			}
		}
		return wifi.Event{Kind: wifi.EventNetworkState}, true
	case nmWirelessIface + ".AccessPointAdded", nmWirelessIface + ".AccessPointRemoved":
		return wifi.Event{Kind: wifi.EventScanResults}, true
	case nmSettingsIface + ".NewConnection", nmSettingsIface + ".ConnectionRemoved":
		return wifi.Event{Kind: wifi.EventConfiguredNetworks}, true
	case propertiesIface + ".PropertiesChanged":
		if len(sig.Body) < 2 {
			return wifi.Event{}, false
		}
		iface, _ := sig.Body[0].(string)
		changed, _ := sig.Body[1].(map[string]dbus.Variant)
		switch iface {
		case nmIface:
			_, connectivity := changed["Connectivity"]
			_, radio := changed["WirelessEnabled"]
			if connectivity || radio {
				return wifi.Event{Kind: wifi.EventCapabilities}, true
			}
		case nmWirelessIface:
			if _, ok := changed["LastScan"]; ok {
				return wifi.Event{Kind: wifi.EventScanResults}, true
			}
		}
	}
	return wifi.Event{}, false
}
