package validate

import (
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/cmdgate/internal/mode"
	"github.com/ppiankov/cmdgate/internal/policy"
)

func rejectAll(reason string) Validator {
	return Func(func(string) Result { return Reject(reason) })
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(policy.ValidateRm, rejectAll("no rm")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	v, ok := r.Get(policy.ValidateRm)
	if !ok {
		t.Fatal("expected validator to be registered")
	}
	if res := v.Validate("rm -rf /"); res.OK || res.Reason != "no rm" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(policy.ValidateRm, rejectAll("a")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(policy.ValidateRm, rejectAll("b")); err == nil {
		t.Fatal("expected duplicate registration error")
	}

	r.Replace(policy.ValidateRm, rejectAll("b"))
	v, _ := r.Get(policy.ValidateRm)
	if res := v.Validate("rm x"); res.Reason != "b" {
		t.Fatalf("Replace did not take effect: %+v", res)
	}
}

func TestRegisterRejectsEmpty(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("", rejectAll("x")); err == nil {
		t.Fatal("expected error for empty id")
	}
	if err := r.Register(policy.ValidateRm, nil); err == nil {
		t.Fatal("expected error for nil validator")
	}
}

func TestLookupIsModeAware(t *testing.T) {
	r := NewRegistry()
	r.Register(policy.ValidateCurl, rejectAll("curl"))

	if _, _, ok := r.Lookup("curl", mode.Normal); ok {
		t.Fatal("curl validator returned in normal mode")
	}

	v, id, ok := r.Lookup("curl", mode.Strict)
	if !ok || v == nil {
		t.Fatal("curl validator missing in strict mode")
	}
	if id != policy.ValidateCurl {
		t.Fatalf("id = %q, want %q", id, policy.ValidateCurl)
	}
}

func TestLookupUnvalidatedCommand(t *testing.T) {
	r := NewRegistry()
	for _, m := range []mode.Mode{mode.Normal, mode.Strict} {
		if _, _, ok := r.Lookup("ls", m); ok {
			t.Fatalf("ls has a validator in %s mode", m)
		}
	}
}

func TestLookupMissingImplementationFailsClosed(t *testing.T) {
	r := NewRegistry()
	v, _, ok := r.Lookup("rm", mode.Normal)
	if !ok {
		t.Fatal("expected rm to resolve even without implementation")
	}
	res := v.Validate("rm file.txt")
	if res.OK {
		t.Fatal("missing implementation must reject")
	}
	if !strings.Contains(res.Reason, string(policy.ValidateRm)) {
		t.Fatalf("reason should name the validator, got %q", res.Reason)
	}
}

func TestRejectAlwaysHasReason(t *testing.T) {
	if res := Reject(""); res.OK || res.Reason == "" {
		t.Fatalf("Reject(\"\") = %+v", res)
	}
	if res := Allow(); !res.OK || res.Reason != "" {
		t.Fatalf("Allow() = %+v", res)
	}
}

func TestConcurrentLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(policy.ValidateCurl, Func(func(cmd string) Result {
		if strings.Contains(cmd, "-d") {
			return Reject("upload")
		}
		return Allow()
	}))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, ok := r.Lookup("curl", mode.Strict)
			if !ok {
				t.Error("lookup failed")
				return
			}
			cmd := "curl https://example.com"
			if i%2 == 0 {
				cmd = "curl -d x https://example.com"
			}
			res := v.Validate(cmd)
			if res.OK == (i%2 == 0) {
				t.Errorf("unexpected result for %q: %+v", cmd, res)
			}
		}(i)
	}
	wg.Wait()
}

func TestIDsSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(policy.ValidateWget, rejectAll("w"))
	r.Register(policy.ValidateCurl, rejectAll("c"))

	ids := r.IDs()
	if len(ids) != 2 || ids[0] != policy.ValidateCurl || ids[1] != policy.ValidateWget {
		t.Fatalf("IDs() = %v", ids)
	}
}
