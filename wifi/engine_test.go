package wifi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotSSIDs(s Snapshot) []string {
	var out []string
	for _, ap := range s.AccessPoints {
		out = append(out, ap.SSID)
	}
	return out
}

func TestReconcileOrdersByLevel(t *testing.T) {
	e := NewEngine()
	snap := e.Reconcile(Input{Scans: []ScanResult{
		{SSID: "A", BSSID: "aa", Capabilities: "[WPA2-PSK-CCMP][ESS]", Level: -60},
		{SSID: "B", BSSID: "bb", Capabilities: "", Level: -70},
	}})

	require.Equal(t, []string{"A", "B"}, snapshotSSIDs(snap))
	a, b := snap.AccessPoints[0], snap.AccessPoints[1]
	assert.Equal(t, SecurityPSK, a.Security)
	assert.Equal(t, PSKWPA2, a.PSKType)
	assert.Equal(t, 2, a.SignalLevel(snap.Levels))
	assert.Equal(t, SecurityNone, b.Security)
	assert.Equal(t, 2, b.SignalLevel(snap.Levels))
	assert.Equal(t, uint64(1), snap.Seq)
}

func TestReconcileDedup(t *testing.T) {
	e := NewEngine()
	snap := e.Reconcile(Input{Scans: []ScanResult{
		{SSID: "mesh", BSSID: "01", Capabilities: "[WPA2-PSK-CCMP]", Level: -80},
		{SSID: "mesh", BSSID: "02", Capabilities: "[WPA2-PSK-CCMP]", Level: -50},
		{SSID: "mesh", BSSID: "03", Capabilities: "[ESS]", Level: -50},
		{SSID: "", BSSID: "04", Capabilities: "[ESS]", Level: -40},
	}})

	require.Len(t, snap.AccessPoints, 2)
	seen := map[Key]bool{}
	for _, ap := range snap.AccessPoints {
		assert.False(t, seen[ap.Key()], "duplicate %v", ap.Key())
		seen[ap.Key()] = true
	}
	// The first scan result for a key wins.
	psk, ok := snap.Lookup(Key{SSID: "mesh", Security: SecurityPSK})
	require.True(t, ok)
	assert.Equal(t, "01", psk.BSSID)
}

func TestReconcileAttachesConfig(t *testing.T) {
	e := NewEngine()
	snap := e.Reconcile(Input{
		Scans: []ScanResult{
			{SSID: "home", Capabilities: "[WPA2-PSK-CCMP]", Level: -70},
			{SSID: "cafe", Capabilities: "[ESS]", Level: -40},
		},
		Configs: []Configuration{
			{NetworkID: 1, SSID: `"home"`, KeyMgmt: KeyMgmtWPAPSK},
			{NetworkID: 2, SSID: "home", KeyMgmt: KeyMgmtWPAPSK},
			{NetworkID: 3, SSID: `"cafe"`, KeyMgmt: KeyMgmtWPAPSK},
		},
	})

	require.Equal(t, []string{"home", "cafe"}, snapshotSSIDs(snap))
	home := snap.AccessPoints[0]
	assert.Equal(t, 2, home.NetworkID, "the last matching profile wins")
	require.NotNil(t, home.Config)
	assert.Equal(t, 2, home.Config.NetworkID)
	assert.Equal(t, StatusSaved, home.Status())

	cafe := snap.AccessPoints[1]
	assert.False(t, cafe.Saved(), "security mismatch should not attach")
	assert.Nil(t, cafe.Config)
}

func TestReconcileDuplicateConfigs(t *testing.T) {
	configs := []Configuration{
		{NetworkID: 1, SSID: `"home"`, KeyMgmt: KeyMgmtWPAPSK, PreSharedKey: `"oldpass1"`},
		{NetworkID: 2, SSID: `"home"`, KeyMgmt: KeyMgmtWPAPSK, PreSharedKey: `"newpass1"`},
	}
	live := func(id int) *LiveConnection {
		return &LiveConnection{Info: ConnectionInfo{NetworkID: id, SSID: `"home"`, State: DetailedStateConnected}}
	}

	tests := []struct {
		name      string
		live      *LiveConnection
		networkID int
		status    Status
	}{
		{"no connection", nil, 2, StatusSaved},
		{"connected with newer profile", live(2), 2, StatusConnected},
		{"connected with older profile", live(1), 1, StatusConnected},
		{"connected elsewhere", live(9), 2, StatusSaved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := NewEngine().Reconcile(Input{
				Scans:   []ScanResult{{SSID: "home", Capabilities: "[WPA2-PSK-CCMP]", Level: -60}},
				Configs: configs,
				Live:    tt.live,
			})
			home, ok := snap.Find("home")
			require.True(t, ok)
			assert.Equal(t, tt.networkID, home.NetworkID)
			require.NotNil(t, home.Config)
			assert.Equal(t, tt.networkID, home.Config.NetworkID)
			assert.Equal(t, tt.status, home.Status())
			assert.Equal(t, tt.status == StatusConnected, home.Active())
		})
	}
}

func TestReconcileDuplicateConfigsOutOfRange(t *testing.T) {
	snap := NewEngine(WithSavedOutOfRange(true)).Reconcile(Input{
		Configs: []Configuration{
			{NetworkID: 3, SSID: `"away"`, KeyMgmt: KeyMgmtWPAPSK},
			{NetworkID: 8, SSID: "away", KeyMgmt: KeyMgmtWPAPSK},
		},
	})
	require.Len(t, snap.AccessPoints, 1)
	assert.Equal(t, 8, snap.AccessPoints[0].NetworkID)
}

func TestConfigIDs(t *testing.T) {
	e := NewEngine()
	e.Reconcile(Input{
		Configs: []Configuration{
			{NetworkID: 1, SSID: `"home"`, KeyMgmt: KeyMgmtWPAPSK},
			{NetworkID: 2, SSID: `"home"`, KeyMgmt: KeyMgmtNone},
			{NetworkID: 3, SSID: "home", KeyMgmt: KeyMgmtWPAPSK},
		},
	})
	assert.Equal(t, []int{1, 3}, e.ConfigIDs(Key{SSID: "home", Security: SecurityPSK}))
	assert.Empty(t, e.ConfigIDs(Key{SSID: "cafe", Security: SecurityPSK}))
}

func TestReconcileSavedOutOfRange(t *testing.T) {
	in := Input{
		Scans:   []ScanResult{{SSID: "here", Capabilities: "[ESS]", Level: -60}},
		Configs: []Configuration{{NetworkID: 9, SSID: `"away"`, KeyMgmt: KeyMgmtWPAPSK}},
	}

	snap := NewEngine().Reconcile(in)
	assert.Equal(t, []string{"here"}, snapshotSSIDs(snap))

	snap = NewEngine(WithSavedOutOfRange(true)).Reconcile(in)
	require.Equal(t, []string{"here", "away"}, snapshotSSIDs(snap))
	away := snap.AccessPoints[1]
	assert.False(t, away.InRange)
	assert.Equal(t, 0, away.SignalLevel(snap.Levels))
	assert.True(t, away.Saved())
}

func TestReconcileLiveConnection(t *testing.T) {
	e := NewEngine()
	snap := e.Reconcile(Input{
		Scans: []ScanResult{
			{SSID: "strong", Capabilities: "[ESS]", Level: -30},
			{SSID: "home", Capabilities: "[WPA2-PSK-CCMP]", Level: -90},
		},
		Configs: []Configuration{{NetworkID: 5, SSID: `"home"`, KeyMgmt: KeyMgmtWPAPSK}},
		Live:    &LiveConnection{Info: ConnectionInfo{NetworkID: 5, SSID: `"home"`, State: DetailedStateConnected}},
	})

	require.Equal(t, []string{"home", "strong"}, snapshotSSIDs(snap))
	home := snap.AccessPoints[0]
	assert.True(t, home.Active())
	assert.True(t, home.Connected())
	assert.Equal(t, StatusConnected, home.Status())
	assert.False(t, home.CredentialRejected())
	assert.Nil(t, snap.AccessPoints[1].Connection)
}

func TestLiveConnectionPrecedence(t *testing.T) {
	scans := []ScanResult{
		{SSID: "net", Capabilities: "[ESS]", Level: -50},
		{SSID: "net", Capabilities: "[WPA2-PSK-CCMP]", Level: -50},
	}

	t.Run("unsaved matches by ssid", func(t *testing.T) {
		snap := NewEngine().Reconcile(Input{
			Scans: scans,
			Live:  &LiveConnection{Info: ConnectionInfo{NetworkID: InvalidNetworkID, SSID: `"net"`, State: DetailedStateConnecting}},
		})
		var active int
		for _, ap := range snap.AccessPoints {
			if ap.Connection != nil {
				active++
			}
		}
		assert.Equal(t, 1, active, "at most one access point holds the connection")
	})

	t.Run("configuration picks security", func(t *testing.T) {
		snap := NewEngine().Reconcile(Input{
			Scans: scans,
			Live: &LiveConnection{
				Info:   ConnectionInfo{NetworkID: InvalidNetworkID, SSID: `"net"`, State: DetailedStateAuthenticating},
				Config: &Configuration{NetworkID: InvalidNetworkID, SSID: `"net"`, KeyMgmt: KeyMgmtWPAPSK},
			},
		})
		require.NotEmpty(t, snap.AccessPoints)
		first := snap.AccessPoints[0]
		assert.Equal(t, SecurityPSK, first.Security)
		assert.Equal(t, StatusAuthenticating, first.Status())
	})

	t.Run("saved matches by network id only", func(t *testing.T) {
		snap := NewEngine().Reconcile(Input{
			Scans:   scans,
			Configs: []Configuration{{NetworkID: 2, SSID: `"net"`, KeyMgmt: KeyMgmtWPAPSK}},
			Live:    &LiveConnection{Info: ConnectionInfo{NetworkID: 8, SSID: `"net"`, State: DetailedStateConnected}},
		})
		psk, ok := snap.Lookup(Key{SSID: "net", Security: SecurityPSK})
		require.True(t, ok)
		assert.Nil(t, psk.Connection, "saved access point with another network id")
	})
}

func TestUpdateConnection(t *testing.T) {
	e := NewEngine()
	e.Reconcile(Input{
		Scans:   []ScanResult{{SSID: "home", Capabilities: "[WPA2-PSK-CCMP]", Level: -60}},
		Configs: []Configuration{{NetworkID: 5, SSID: `"home"`, KeyMgmt: KeyMgmtWPAPSK}},
	})

	snap := e.UpdateConnection(&LiveConnection{Info: ConnectionInfo{NetworkID: 5, SSID: `"home"`, State: DetailedStateObtainingIPAddr}})
	assert.Equal(t, uint64(2), snap.Seq)
	assert.Equal(t, StatusObtainingAddress, snap.AccessPoints[0].Status())

	snap = e.UpdateConnection(nil)
	assert.Equal(t, uint64(3), snap.Seq)
	assert.Nil(t, snap.AccessPoints[0].Connection)
	assert.Equal(t, StatusSaved, snap.AccessPoints[0].Status())
	assert.Equal(t, snap, e.Snapshot())
}

func TestHandleAuthFailure(t *testing.T) {
	e := NewEngine()
	configs := []Configuration{{NetworkID: 5, SSID: `"home"`, KeyMgmt: KeyMgmtWPAPSK}}
	scans := []ScanResult{{SSID: "home", Capabilities: "[WPA2-PSK-CCMP]", Level: -60}}
	e.Reconcile(Input{
		Scans:   scans,
		Configs: configs,
		Live:    &LiveConnection{Info: ConnectionInfo{NetworkID: 5, SSID: `"home"`, State: DetailedStateAuthenticating}},
	})

	snap, ok := e.HandleAuthFailure()
	require.True(t, ok)
	home := snap.AccessPoints[0]
	assert.Equal(t, InvalidNetworkID, home.NetworkID)
	assert.Nil(t, home.Config)
	assert.True(t, home.CredentialRejected())
	assert.True(t, home.NeedsPassword())

	// The rejection survives a rebuild that attaches the configuration again.
	snap = e.Reconcile(Input{Scans: scans, Configs: configs})
	home = snap.AccessPoints[0]
	assert.True(t, home.Saved())
	assert.True(t, home.CredentialRejected())
	assert.True(t, home.NeedsPassword())

	// A successful connection clears it.
	snap = e.Reconcile(Input{
		Scans:   scans,
		Configs: configs,
		Live:    &LiveConnection{Info: ConnectionInfo{NetworkID: 5, SSID: `"home"`, State: DetailedStateConnected}},
	})
	home = snap.AccessPoints[0]
	assert.Equal(t, StatusConnected, home.Status())
	assert.False(t, home.CredentialRejected())
	assert.False(t, home.NeedsPassword())
}

func TestHandleAuthFailureWithoutConfig(t *testing.T) {
	e := NewEngine()
	before := e.Reconcile(Input{
		Scans: []ScanResult{{SSID: "cafe", Capabilities: "[ESS]", Level: -60}},
		Live:  &LiveConnection{Info: ConnectionInfo{NetworkID: InvalidNetworkID, SSID: `"cafe"`, State: DetailedStateConnecting}},
	})
	after, ok := e.HandleAuthFailure()
	assert.False(t, ok)
	assert.Equal(t, before, after)
}

func TestPendingPassword(t *testing.T) {
	e := NewEngine()
	e.Reconcile(Input{Scans: []ScanResult{{SSID: "home", Capabilities: "[WPA2-PSK-CCMP]", Level: -60}}})
	key := Key{SSID: "home", Security: SecurityPSK}

	require.NoError(t, e.SetPendingPassword(key, "hunter22"))
	assert.ErrorIs(t, e.SetPendingPassword(Key{SSID: "nope"}, "x"), ErrNotFound)
	assert.ErrorIs(t, e.ResetCredentials(Key{SSID: "nope"}), ErrNotFound)

	ap, ok := e.Lookup(key)
	require.True(t, ok)
	cfg, err := ap.NetworkConfig()
	require.NoError(t, err)
	assert.Equal(t, `"hunter22"`, cfg.PreSharedKey)

	// Carried over by key across rebuilds.
	e.Reconcile(Input{Scans: []ScanResult{{SSID: "home", Capabilities: "[WPA2-PSK-CCMP]", Level: -80}}})
	ap, _ = e.Lookup(key)
	assert.Equal(t, "hunter22", ap.PendingPassword)
}

func TestSnapshotIsCopy(t *testing.T) {
	e := NewEngine()
	snap := e.Reconcile(Input{Scans: []ScanResult{{SSID: "home", Capabilities: "[ESS]", Level: -60}}})
	snap.AccessPoints[0].SSID = "changed"

	ap, ok := e.Snapshot().Find("home")
	require.True(t, ok)
	assert.Equal(t, "home", ap.SSID)
}

func TestWithSignalLevels(t *testing.T) {
	e := NewEngine(WithSignalLevels(5))
	assert.Equal(t, 5, e.Levels())
	assert.Equal(t, 5, e.Snapshot().Levels)
	assert.Equal(t, DefaultSignalLevels, NewEngine(WithSignalLevels(0)).Levels())
}
