package iwd

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shazow/wifilist/wifi"
)

func testObjects() managedObjects {
	v := dbus.MakeVariant
	return managedObjects{
		"/net/connman/iwd/0/3": {
			iwdDeviceIface:  {"Name": v("wlan0"), "Powered": v(true)},
			iwdStationIface: {"State": v("connected"), "ConnectedNetwork": v(dbus.ObjectPath("/net/connman/iwd/0/3/686f6d65_psk"))},
		},
		"/net/connman/iwd/0/3/686f6d65_psk": {
			iwdNetworkIface: {
				"Name":         v("home"),
				"Type":         v("psk"),
				"Connected":    v(true),
				"KnownNetwork": v(dbus.ObjectPath("/net/connman/iwd/686f6d65_psk")),
			},
		},
		"/net/connman/iwd/0/3/63616665_open": {
			iwdNetworkIface: {"Name": v("cafe"), "Type": v("open"), "Connected": v(false)},
		},
		"/net/connman/iwd/686f6d65_psk": {
			iwdKnownNetworkIface: {"Name": v("home"), "Type": v("psk")},
		},
		"/net/connman/iwd/776f726b_8021x": {
			iwdKnownNetworkIface: {"Name": v("work"), "Type": v("8021x")},
		},
	}
}

func TestManagedObjects(t *testing.T) {
	objs := testObjects()

	p, props, ok := objs.station()
	require.True(t, ok)
	assert.Equal(t, dbus.ObjectPath("/net/connman/iwd/0/3"), p)
	assert.Equal(t, "connected", stringProp(props, "State"))
	assert.True(t, boolProp(objs[p][iwdDeviceIface], "Powered"))

	networks := objs.networks()
	require.Len(t, networks, 2)
	assert.Equal(t, "cafe", networks[0].name)
	assert.Equal(t, "home", networks[1].name)
	assert.True(t, networks[1].connected)
	assert.Equal(t, dbus.ObjectPath("/net/connman/iwd/686f6d65_psk"), networks[1].known)

	known := objs.knownNetworks()
	require.Len(t, known, 2)
	assert.Equal(t, "home", known[0].name)
	assert.Equal(t, "8021x", known[1].kind)

	_, _, ok = managedObjects{}.station()
	assert.False(t, ok)
}

func TestCapabilitiesMatchConfiguration(t *testing.T) {
	for _, kind := range []string{"open", "wep", "psk", "8021x"} {
		scan := wifi.NewAccessPoint(wifi.ScanResult{SSID: "net", Capabilities: capabilities(kind)})
		saved := wifi.NewAccessPointFromConfig(configuration(1, knownNetwork{name: "net", kind: kind}))
		assert.Equal(t, scan.Key(), saved.Key(), kind)
	}
}

func TestDetailedState(t *testing.T) {
	assert.Equal(t, wifi.DetailedStateConnected, detailedState("connected"))
	assert.Equal(t, wifi.DetailedStateConnecting, detailedState("roaming"))
	assert.Equal(t, wifi.DetailedStateDisconnected, detailedState("disconnected"))
	assert.Equal(t, wifi.DetailedStateIdle, detailedState(""))
}

func TestEventForSignal(t *testing.T) {
	v := dbus.MakeVariant
	tests := []struct {
		name string
		sig  *dbus.Signal
		want wifi.EventKind
		ok   bool
	}{
		{
			name: "station state",
			sig:  &dbus.Signal{Name: propertiesIface + ".PropertiesChanged", Body: []interface{}{iwdStationIface, map[string]dbus.Variant{"State": v("connecting")}, []string{}}},
			want: wifi.EventNetworkState,
			ok:   true,
		},
		{
			name: "scan finished",
			sig:  &dbus.Signal{Name: propertiesIface + ".PropertiesChanged", Body: []interface{}{iwdStationIface, map[string]dbus.Variant{"Scanning": v(false)}, []string{}}},
			want: wifi.EventScanResults,
			ok:   true,
		},
		{
			name: "scan started",
			sig:  &dbus.Signal{Name: propertiesIface + ".PropertiesChanged", Body: []interface{}{iwdStationIface, map[string]dbus.Variant{"Scanning": v(true)}, []string{}}},
		},
		{
			name: "powered",
			sig:  &dbus.Signal{Name: propertiesIface + ".PropertiesChanged", Body: []interface{}{iwdDeviceIface, map[string]dbus.Variant{"Powered": v(false)}, []string{}}},
			want: wifi.EventCapabilities,
			ok:   true,
		},
		{
			name: "known network added",
			sig: &dbus.Signal{Name: objectManagerIface + ".InterfacesAdded", Body: []interface{}{
				dbus.ObjectPath("/net/connman/iwd/x"), map[string]map[string]dbus.Variant{iwdKnownNetworkIface: {}},
			}},
			want: wifi.EventConfiguredNetworks,
			ok:   true,
		},
		{
			name: "network removed",
			sig: &dbus.Signal{Name: objectManagerIface + ".InterfacesRemoved", Body: []interface{}{
				dbus.ObjectPath("/net/connman/iwd/0/3/x"), []string{iwdNetworkIface},
			}},
			want: wifi.EventScanResults,
			ok:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := eventForSignal(tt.sig)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, e.Kind)
			}
		})
	}
}
