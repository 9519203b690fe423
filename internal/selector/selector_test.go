package selector

import (
	"testing"

	"github.com/rs/zerolog"

	"hybridd/internal/catalog"
	"hybridd/pkg/types"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]types.ModelProfile{
		{Name: "tiny", Kind: types.KindLocal, RAMRequiredMB: 2048, Capabilities: []string{"chat", "code"}},
		{Name: "mid", Kind: types.KindLocal, RAMRequiredMB: 3584, Capabilities: []string{"chat"}},
		{Name: "big", Kind: types.KindLocal, RAMRequiredMB: 6656, Capabilities: []string{"chat", "code"}},
		{Name: "hosted", Kind: types.KindRemote, Capabilities: []string{"chat", "code"}},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func newSelector(t *testing.T, preferLargest bool) *Selector {
	t.Helper()
	return New(testCatalog(t), 0.7, 20, preferLargest, zerolog.Nop())
}

func TestSelect_PrefersLargestThatFits(t *testing.T) {
	s := newSelector(t, true)
	res := types.Resources{BatteryPercent: 90, AvailableRAMMB: 16384}
	p, err := s.Select("chat", res, Options{Kind: types.KindLocal})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if p.Name != "big" {
		t.Fatalf("selected %s, want big", p.Name)
	}
}

func TestSelect_SafetyFactorExcludesTightFits(t *testing.T) {
	s := newSelector(t, true)
	// 6144 * 0.7 = 4300.8: big (6656) does not fit, mid (3584) does.
	res := types.Resources{BatteryPercent: 90, AvailableRAMMB: 6144}
	p, err := s.Select("chat", res, Options{Kind: types.KindLocal})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if p.Name != "mid" {
		t.Fatalf("selected %s, want mid", p.Name)
	}
}

func TestSelect_EcoPicksSmallest(t *testing.T) {
	s := newSelector(t, true)
	res := types.Resources{BatteryPercent: 90, AvailableRAMMB: 16384}
	p, err := s.Select("chat", res, Options{Eco: true, Kind: types.KindLocal})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if p.Name != "tiny" {
		t.Fatalf("selected %s, want tiny", p.Name)
	}
}

func TestSelect_LowBatteryForcesEco(t *testing.T) {
	s := newSelector(t, true)
	res := types.Resources{BatteryPercent: 15, AvailableRAMMB: 16384}
	if !s.EcoForced(res) {
		t.Fatalf("battery below threshold should force eco")
	}
	p, err := s.Select("chat", res, Options{Kind: types.KindLocal})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if p.Name != "tiny" {
		t.Fatalf("selected %s, want tiny under forced eco", p.Name)
	}
}

func TestSelect_UnknownBatteryNeverForcesEco(t *testing.T) {
	s := newSelector(t, true)
	res := types.Resources{BatteryPercent: types.BatteryUnknown, AvailableRAMMB: 16384}
	if s.EcoForced(res) {
		t.Fatalf("unknown battery must not force eco")
	}
}

func TestSelect_UnknownRAMAssumedSufficient(t *testing.T) {
	s := newSelector(t, true)
	res := types.Resources{BatteryPercent: 90, AvailableRAMMB: 0}
	p, err := s.Select("chat", res, Options{Kind: types.KindLocal})
	if err != nil {
		t.Fatalf("select with unknown RAM: %v", err)
	}
	if p.Name != "big" {
		t.Fatalf("selected %s, want big when RAM unknown", p.Name)
	}
}

func TestSelect_CapabilityFilter(t *testing.T) {
	s := newSelector(t, true)
	res := types.Resources{BatteryPercent: 90, AvailableRAMMB: 6144}
	// mid lacks "code", so the only fitting local code model is tiny.
	p, err := s.Select("code", res, Options{Kind: types.KindLocal})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if p.Name != "tiny" {
		t.Fatalf("selected %s, want tiny", p.Name)
	}
}

func TestSelect_KindFilter(t *testing.T) {
	s := newSelector(t, true)
	res := types.Resources{BatteryPercent: 90, AvailableRAMMB: 16384}
	p, err := s.Select("chat", res, Options{Kind: types.KindRemote})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if p.Kind != types.KindRemote {
		t.Fatalf("kind filter ignored: %+v", p)
	}
}

func TestSelect_NoSuitableModel(t *testing.T) {
	s := newSelector(t, true)
	res := types.Resources{BatteryPercent: 90, AvailableRAMMB: 16384}
	_, err := s.Select("vision", res, Options{})
	if !IsNoSuitableModel(err) {
		t.Fatalf("expected NoSuitableModel, got %v", err)
	}
}

func TestSelect_SmallestPolicy(t *testing.T) {
	s := newSelector(t, false)
	res := types.Resources{BatteryPercent: 90, AvailableRAMMB: 16384}
	p, err := s.Select("chat", res, Options{Kind: types.KindLocal})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if p.Name != "tiny" {
		t.Fatalf("selected %s, want tiny under smallest policy", p.Name)
	}
}
