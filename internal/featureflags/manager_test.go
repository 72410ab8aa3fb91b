package featureflags

import "testing"

func TestEnabledBooleanFlags(t *testing.T) {
	m := NewManager("personalized_feed=on,story_replies=off,live_badges=true,legacy_tray=false")

	if !m.Enabled("personalized_feed", 1) || !m.Enabled("live_badges", 1) {
		t.Fatal("expected on/true flags to evaluate enabled")
	}
	if m.Enabled("story_replies", 1) || m.Enabled("legacy_tray", 1) {
		t.Fatal("expected off/false flags to evaluate disabled")
	}
	if m.Enabled("never_configured", 1) {
		t.Fatal("unknown flags must default to disabled")
	}
}

func TestPercentageRollout(t *testing.T) {
	m := NewManager("personalized_feed=25%,everyone=100%,nobody=0%")

	if !m.Enabled("everyone", 1) {
		t.Fatal("a 100% rollout is on for every user")
	}
	if m.Enabled("nobody", 1) {
		t.Fatal("a 0% rollout is off for every user")
	}
	if m.Enabled("personalized_feed", 0) {
		t.Fatal("an anonymous viewer is never inside a percentage rollout")
	}

	// The same user must land on the same side of the rollout every time.
	first := m.Enabled("personalized_feed", 42)
	for i := 0; i < 5; i++ {
		if m.Enabled("personalized_feed", 42) != first {
			t.Fatal("rollout assignment must be deterministic per user")
		}
	}

	// A partial rollout actually splits the user base.
	in := 0
	for id := uint(1); id <= 200; id++ {
		if m.Enabled("personalized_feed", id) {
			in++
		}
	}
	if in == 0 || in == 200 {
		t.Fatalf("25%% rollout should include some users and exclude others, got %d/200", in)
	}
}

func TestMalformedPairsAreSkipped(t *testing.T) {
	m := NewManager(" junk ,personalized_feed=on, canary_feed = 20% ,=off,dangling=")

	raw := m.Raw()
	if len(raw) != 2 {
		t.Fatalf("expected 2 parsed flags, got %d: %#v", len(raw), raw)
	}
	if raw["personalized_feed"] != "on" || raw["canary_feed"] != "20%" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}

	snap := m.Snapshot(123)
	if len(snap) != 2 {
		t.Fatalf("expected snapshot size 2, got %d", len(snap))
	}
	if !snap["personalized_feed"] {
		t.Fatal("snapshot must reflect evaluated state")
	}
}

func TestNilManagerIsDisabled(t *testing.T) {
	var m *Manager
	if m.Enabled("personalized_feed", 1) {
		t.Fatal("a nil manager must evaluate every flag as disabled")
	}
}
