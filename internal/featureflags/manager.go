// Package featureflags evaluates rollout switches parsed from config.
//
// Flags arrive as a comma-separated list, e.g.
// "personalized_feed=10%,story_replies=off". A flag is either a hard
// on/off or a percentage rollout bucketed deterministically per user, so
// a viewer keeps the same feed variant across requests and restarts.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

type flagState int8

const (
	flagOff flagState = iota
	flagOn
	flagPercent
)

type flag struct {
	state flagState
	pct   int
	raw   string
}

// Manager holds the parsed flag set. The default everywhere is "off":
// unknown flags, malformed values, and a nil Manager all evaluate to
// disabled.
type Manager struct {
	flags map[string]flag
}

// NewManager parses a comma-separated flag list. Malformed pairs are
// skipped rather than failing boot.
func NewManager(raw string) *Manager {
	flags := make(map[string]flag)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = normalize(name)
		value = normalize(value)
		if !ok || name == "" || value == "" {
			continue
		}
		flags[name] = parseValue(value)
	}

	return &Manager{flags: flags}
}

func parseValue(value string) flag {
	f := flag{raw: value}

	switch value {
	case "on", "true", "1":
		f.state = flagOn
		return f
	case "off", "false", "0":
		return f
	}

	if pctRaw, ok := strings.CutSuffix(value, "%"); ok {
		pct, err := strconv.Atoi(pctRaw)
		if err == nil && pct > 0 {
			if pct >= 100 {
				f.state = flagOn
			} else {
				f.state = flagPercent
				f.pct = pct
			}
		}
	}
	return f
}

// Enabled reports whether the named flag is on for this user. Percentage
// rollouts need a real user identity; userID 0 always falls outside the
// rollout.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	f, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch f.state {
	case flagOn:
		return true
	case flagPercent:
		if userID == 0 {
			return false
		}
		return bucket(normalize(name), userID) < f.pct
	}
	return false
}

// Raw returns a copy of the configured flag values as they were parsed.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for name, f := range m.flags {
		out[name] = f.raw
	}
	return out
}

// Snapshot evaluates every configured flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// bucket maps (flag, user) onto 0..99. FNV keeps the assignment stable
// without any stored state.
func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s/%d", name, userID)
	return int(h.Sum32() % 100)
}
