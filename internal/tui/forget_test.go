package tui

import (
	"testing"

	"github.com/shazow/wifilist/wifi"
)

func savedItem() accessPointItem {
	ap := wifi.NewAccessPointFromConfig(wifi.Configuration{NetworkID: 3, SSID: `"test"`, KeyMgmt: wifi.KeyMgmtWPAPSK})
	return accessPointItem{AccessPoint: *ap, levels: 4}
}

func TestForgetModel_YesKey(t *testing.T) {
	m := NewForgetModel(savedItem())
	_, cmd := m.Update(keyMsg("y"))

	var popped, forgot bool
	for _, msg := range collect(cmd) {
		switch msg := msg.(type) {
		case popViewMsg:
			popped = true
		case forgetMsg:
			forgot = msg.item.SSID == "test"
		}
	}
	if !popped || !forgot {
		t.Errorf("expected pop and forget, got popped=%v forgot=%v", popped, forgot)
	}
}

func TestForgetModel_NoKey(t *testing.T) {
	m := NewForgetModel(savedItem())
	_, cmd := m.Update(keyMsg("n"))

	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %v", msgs)
	}
	if _, ok := msgs[0].(popViewMsg); !ok {
		t.Errorf("expected a popViewMsg but got %T", msgs[0])
	}
}
