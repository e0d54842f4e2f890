package iwd

import (
	"sort"

	"github.com/godbus/dbus/v5"

	"github.com/shazow/wifilist/wifi"
)

// IWD constants
const (
	iwdDest              = "net.connman.iwd"
	iwdRoot              = dbus.ObjectPath("/")
	iwdNamespace         = dbus.ObjectPath("/net/connman/iwd")
	iwdAgentManagerIface = "net.connman.iwd.AgentManager"
	iwdAgentIface        = "net.connman.iwd.Agent"
	iwdDeviceIface       = "net.connman.iwd.Device"
	iwdNetworkIface      = "net.connman.iwd.Network"
	iwdStationIface      = "net.connman.iwd.Station"
	iwdKnownNetworkIface = "net.connman.iwd.KnownNetwork"
	objectManagerIface   = "org.freedesktop.DBus.ObjectManager"
	propertiesIface      = "org.freedesktop.DBus.Properties"
)

// managedObjects is the reply of ObjectManager.GetManagedObjects.
type managedObjects map[dbus.ObjectPath]map[string]map[string]dbus.Variant

type network struct {
	path      dbus.ObjectPath
	name      string
	kind      string
	connected bool
	known     dbus.ObjectPath
}

type knownNetwork struct {
	path dbus.ObjectPath
	name string
	kind string
}

func stringProp(props map[string]dbus.Variant, name string) string {
	s, _ := props[name].Value().(string)
	return s
}

func boolProp(props map[string]dbus.Variant, name string) bool {
	b, _ := props[name].Value().(bool)
	return b
}

func pathProp(props map[string]dbus.Variant, name string) dbus.ObjectPath {
	p, _ := props[name].Value().(dbus.ObjectPath)
	return p
}

// station returns the first station device and its properties.
func (objs managedObjects) station() (dbus.ObjectPath, map[string]dbus.Variant, bool) {
	paths := objs.sortedPaths()
	for _, p := range paths {
		if props, ok := objs[p][iwdStationIface]; ok {
			return p, props, true
		}
	}
	return "", nil, false
}

func (objs managedObjects) networks() []network {
	var out []network
	for _, p := range objs.sortedPaths() {
		props, ok := objs[p][iwdNetworkIface]
		if !ok {
			continue
		}
		out = append(out, network{
			path:      p,
			name:      stringProp(props, "Name"),
			kind:      stringProp(props, "Type"),
			connected: boolProp(props, "Connected"),
			known:     pathProp(props, "KnownNetwork"),
		})
	}
	return out
}

func (objs managedObjects) knownNetworks() []knownNetwork {
	var out []knownNetwork
	for _, p := range objs.sortedPaths() {
		props, ok := objs[p][iwdKnownNetworkIface]
		if !ok {
			continue
		}
		out = append(out, knownNetwork{
			path: p,
			name: stringProp(props, "Name"),
			kind: stringProp(props, "Type"),
		})
	}
	return out
}

func (objs managedObjects) sortedPaths() []dbus.ObjectPath {
	paths := make([]dbus.ObjectPath, 0, len(objs))
	for p := range objs {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths
}

// capabilities renders an iwd network type in the bracketed form the engine
// parses.
func capabilities(kind string) string {
	switch kind {
	case "psk":
		return "[WPA2-PSK-CCMP][ESS]"
	case "8021x":
		return "[WPA2-EAP-CCMP][ESS]"
	case "wep":
		return "[WEP][ESS]"
	}
	return "[ESS]"
}

// configuration converts a known network. iwd never exposes secrets, so a
// WEP network gets a placeholder key.
func configuration(id int, k knownNetwork) wifi.Configuration {
	cfg := wifi.Configuration{
		NetworkID: id,
		SSID:      wifi.Quote(k.name),
		KeyMgmt:   wifi.KeyMgmtNone,
	}
	switch k.kind {
	case "psk":
		cfg.KeyMgmt = wifi.KeyMgmtWPAPSK
	case "8021x":
		cfg.KeyMgmt = wifi.KeyMgmtWPAEAP | wifi.KeyMgmtIEEE8021X
	case "wep":
		cfg.WEPKey0 = "*"
	}
	return cfg
}

// detailedState maps Station.State.
func detailedState(state string) wifi.DetailedState {
	switch state {
	case "connected":
		return wifi.DetailedStateConnected
	case "connecting", "roaming":
		return wifi.DetailedStateConnecting
	case "disconnecting":
		return wifi.DetailedStateDisconnecting
	case "disconnected":
		return wifi.DetailedStateDisconnected
	}
	return wifi.DetailedStateIdle
}

// eventForSignal maps an iwd signal onto a feed event.
func eventForSignal(sig *dbus.Signal) (wifi.Event, bool) {
	switch sig.Name {
	case objectManagerIface + ".InterfacesAdded", objectManagerIface + ".InterfacesRemoved":
		if len(sig.Body) < 2 {
			return wifi.Event{}, false
		}
		var ifaces []string
		switch body := sig.Body[1].(type) {
		case map[string]map[string]dbus.Variant:
			for iface := range body {
				ifaces = append(ifaces, iface)
			}
		case []string:
			ifaces = body
		}
		for _, iface := range ifaces {
			switch iface {
			case iwdKnownNetworkIface:
				return wifi.Event{Kind: wifi.EventConfiguredNetworks}, true
			case iwdNetworkIface:
				return wifi.Event{Kind: wifi.EventScanResults}, true
			}
		}
	case propertiesIface + ".PropertiesChanged":
		if len(sig.Body) < 2 {
			return wifi.Event{}, false
		}
		iface, _ := sig.Body[0].(string)
		changed, _ := sig.Body[1].(map[string]dbus.Variant)
		switch iface {
		case iwdStationIface:
			if _, ok := changed["State"]; ok {
				return wifi.Event{Kind: wifi.EventNetworkState}, true
			}
			if scanning, ok := changed["Scanning"]; ok {
				if b, _ := scanning.Value().(bool); !b {
					return wifi.Event{Kind: wifi.EventScanResults}, true
				}
			}
		case iwdDeviceIface:
			if _, ok := changed["Powered"]; ok {
				return wifi.Event{Kind: wifi.EventCapabilities}, true
			}
		case iwdKnownNetworkIface:
			return wifi.Event{Kind: wifi.EventConfiguredNetworks}, true
		}
	}
	return wifi.Event{}, false
}
