// Package mode resolves the gate's operating mode from an external setting.
//
// The mode is never stored. Callers resolve it from a Source at the moment
// of each decision so that toggling the setting takes effect on the next
// command.
package mode

import (
	"os"
	"strings"
)

// Mode is the gate operating mode.
type Mode int

const (
	Normal Mode = iota
	Strict
)

// DefaultEnvKey is the environment variable consulted by EnvSource when no
// key is given.
const DefaultEnvKey = "SECURITY_STRICT_MODE"

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	default:
		return "normal"
	}
}

// MarshalText renders m as "normal" or "strict".
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes text with ParseName. It never fails.
func (m *Mode) UnmarshalText(text []byte) error {
	*m = ParseName(string(text))
	return nil
}

// ParseName maps a mode name or a raw setting to a Mode. "strict" (any
// case) and every value Parse maps to Strict select Strict.
func ParseName(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "strict") {
		return Strict
	}
	return Parse(s)
}

// IsStrict reports whether m is Strict.
func (m Mode) IsStrict() bool {
	return m == Strict
}

// Parse maps a raw setting to a Mode. "true", "1" and "yes" (any case)
// select Strict; everything else selects Normal.
func Parse(value string) Mode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return Strict
	default:
		return Normal
	}
}

// Source yields the raw strict-mode setting. ok is false when the setting
// is absent.
type Source interface {
	Lookup() (value string, ok bool)
}

// Resolve reads src and returns the current mode. A nil source or an absent
// value resolves to Normal.
func Resolve(src Source) Mode {
	if src == nil {
		return Normal
	}
	v, ok := src.Lookup()
	if !ok {
		return Normal
	}
	return Parse(v)
}

// EnvSource reads the setting from the process environment on every lookup.
type EnvSource struct {
	Key string
}

// Lookup implements Source.
func (s EnvSource) Lookup() (string, bool) {
	key := s.Key
	if key == "" {
		key = DefaultEnvKey
	}
	return os.LookupEnv(key)
}

type fixed Mode

func (f fixed) Lookup() (string, bool) {
	if Mode(f) == Strict {
		return "true", true
	}
	return "false", true
}

// Fixed returns a Source that always resolves to m.
func Fixed(m Mode) Source {
	return fixed(m)
}
