package policy

import (
	"testing"

	"github.com/ppiankov/cmdgate/internal/mode"
)

func TestDangerousCommandsRemovedInStrictMode(t *testing.T) {
	dangerous := CommandsInTier(TierDangerous)
	if len(dangerous) == 0 {
		t.Fatal("expected dangerous tier to be non-empty")
	}

	normal := AllowedCommands(mode.Normal)
	strict := AllowedCommands(mode.Strict)

	for _, name := range dangerous {
		if _, ok := normal[name]; !ok {
			t.Errorf("%s missing from normal-mode allowed set", name)
		}
		if _, ok := strict[name]; ok {
			t.Errorf("%s present in strict-mode allowed set", name)
		}
		if IsPermitted(name, mode.Strict) {
			t.Errorf("IsPermitted(%s, strict) = true", name)
		}
		if !IsPermitted(name, mode.Normal) {
			t.Errorf("IsPermitted(%s, normal) = false", name)
		}
	}
}

func TestDangerousTierMembers(t *testing.T) {
	for _, name := range []string{"eval", "exec", "sh", "bash", "zsh"} {
		tier, ok := TierOf(name)
		if !ok || tier != TierDangerous {
			t.Errorf("TierOf(%s) = %v, %v; want dangerous", name, tier, ok)
		}
	}
}

func TestNetworkCommandsAllowedInBothModes(t *testing.T) {
	for _, name := range []string{"curl", "wget"} {
		if !IsPermitted(name, mode.Normal) {
			t.Errorf("%s not permitted in normal mode", name)
		}
		if !IsPermitted(name, mode.Strict) {
			t.Errorf("%s not permitted in strict mode", name)
		}
	}
}

func TestSafeCommandsIdenticalAcrossModes(t *testing.T) {
	for _, name := range CommandsInTier(TierSafe) {
		if IsPermitted(name, mode.Normal) != IsPermitted(name, mode.Strict) {
			t.Errorf("safe command %s changes behaviour across modes", name)
		}
	}
}

func TestAllowedSetIsUnionOfTiers(t *testing.T) {
	normal := AllowedCommands(mode.Normal)
	strict := AllowedCommands(mode.Strict)

	safe := len(CommandsInTier(TierSafe))
	network := len(CommandsInTier(TierNetwork))
	dangerous := len(CommandsInTier(TierDangerous))

	if len(strict) != safe+network {
		t.Errorf("strict allowed = %d, want %d", len(strict), safe+network)
	}
	if len(normal) != safe+network+dangerous {
		t.Errorf("normal allowed = %d, want %d", len(normal), safe+network+dangerous)
	}
}

func TestUnknownCommandNotPermitted(t *testing.T) {
	for _, name := range []string{"python", "nc", "", "CURL"} {
		if IsPermitted(name, mode.Normal) || IsPermitted(name, mode.Strict) {
			t.Errorf("unknown command %q permitted", name)
		}
	}
}

func TestEveryCommandHasKnownTier(t *testing.T) {
	for name, tier := range commandTiers {
		switch tier {
		case TierSafe, TierDangerous, TierNetwork:
		default:
			t.Errorf("command %q has unknown tier %d", name, tier)
		}
	}
}

func TestTierLabel(t *testing.T) {
	tests := []struct {
		tier Tier
		want string
	}{
		{TierSafe, "safe"},
		{TierDangerous, "dangerous"},
		{TierNetwork, "network"},
		{Tier(9), "unknown(9)"},
	}
	for _, tt := range tests {
		if got := TierLabel(tt.tier); got != tt.want {
			t.Errorf("TierLabel(%d) = %q, want %q", tt.tier, got, tt.want)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"curl", "curl"},
		{"/usr/bin/curl", "curl"},
		{"./init.sh", "init.sh"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := BaseName(tt.token); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}
