package types

import "testing"

func TestModelProfile_HasCapability(t *testing.T) {
	p := ModelProfile{Name: "m", Capabilities: []string{"chat", "code"}}
	if !p.HasCapability("chat") || !p.HasCapability("code") {
		t.Fatalf("expected declared capabilities to match")
	}
	if p.HasCapability("vision") {
		t.Fatalf("undeclared capability matched")
	}
}

func TestModelProfile_MobileFriendly(t *testing.T) {
	small := ModelProfile{RAMRequiredMB: 2048}
	big := ModelProfile{RAMRequiredMB: 6656}
	if !small.MobileFriendly() {
		t.Fatalf("2048MB profile should be mobile friendly")
	}
	if big.MobileFriendly() {
		t.Fatalf("6656MB profile should not be mobile friendly")
	}
}

func TestResources_BatteryKnown(t *testing.T) {
	cases := []struct {
		pct  int
		want bool
	}{
		{0, true},
		{57, true},
		{100, true},
		{BatteryUnknown, false},
		{101, false},
	}
	for _, c := range cases {
		r := Resources{BatteryPercent: c.pct}
		if got := r.BatteryKnown(); got != c.want {
			t.Fatalf("BatteryKnown(%d) = %v, want %v", c.pct, got, c.want)
		}
	}
}
