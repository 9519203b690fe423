package catalog

import (
	"errors"
	"testing"

	"hybridd/pkg/types"
)

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New([]types.ModelProfile{
		{Name: "m", Kind: types.KindLocal},
		{Name: "m", Kind: types.KindRemote},
	})
	if err == nil {
		t.Fatalf("duplicate profile accepted")
	}
}

func TestNew_RejectsEmptyName(t *testing.T) {
	_, err := New([]types.ModelProfile{{Name: "   ", Kind: types.KindLocal}})
	if err == nil {
		t.Fatalf("empty name accepted")
	}
}

func TestNew_RejectsUnknownKind(t *testing.T) {
	_, err := New([]types.ModelProfile{{Name: "m", Kind: "edge"}})
	if err == nil {
		t.Fatalf("unknown kind accepted")
	}
}

func TestGet(t *testing.T) {
	c, err := New([]types.ModelProfile{{Name: "m", Kind: types.KindLocal, RAMRequiredMB: 2048}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p, err := c.Get("m")
	if err != nil || p.RAMRequiredMB != 2048 {
		t.Fatalf("get: %+v %v", p, err)
	}
	// Name lookup trims surrounding whitespace.
	if _, err := c.Get(" m "); err != nil {
		t.Fatalf("trimmed lookup: %v", err)
	}
	_, err = c.Get("nope")
	if !IsModelNotFound(err) {
		t.Fatalf("expected ModelNotFound, got %v", err)
	}
}

func TestIsModelNotFound_SurvivesWrapping(t *testing.T) {
	err := ErrModelNotFound("x")
	wrapped := errors.Join(errors.New("outer"), err)
	if !IsModelNotFound(wrapped) {
		t.Fatalf("predicate lost through wrapping")
	}
	if IsModelNotFound(errors.New("other")) {
		t.Fatalf("predicate matched unrelated error")
	}
}

func TestList_ReturnsCopy(t *testing.T) {
	c, err := New(Builtin())
	if err != nil {
		t.Fatalf("builtin catalog invalid: %v", err)
	}
	got := c.List()
	if len(got) == 0 {
		t.Fatalf("empty builtin catalog")
	}
	got[0].Name = "mutated"
	if fresh := c.List(); fresh[0].Name == "mutated" {
		t.Fatalf("List exposes internal slice")
	}
}

func TestBuiltin_HasBothKinds(t *testing.T) {
	var local, remote int
	for _, p := range Builtin() {
		switch p.Kind {
		case types.KindLocal:
			local++
		case types.KindRemote:
			remote++
		}
	}
	if local == 0 || remote == 0 {
		t.Fatalf("builtin catalog must cover both kinds: local=%d remote=%d", local, remote)
	}
}
