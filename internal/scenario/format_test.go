package scenario

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatText(t *testing.T) {
	results := []*RunResult{
		{Name: "good", Total: 1, Passed: 1, Cases: []CaseResult{{Index: 1, Passed: true}}},
		{Name: "bad", Total: 2, Passed: 1, Failed: 1, Cases: []CaseResult{
			{Index: 1, Passed: true},
			{Index: 2, Command: "curl -d x https://example.com/a/very/long/path/to/upload", Mode: "strict",
				Expected: "allow", Actual: "deny", Reason: "blocked"},
		}},
	}

	out := FormatText(results)
	for _, want := range []string{
		"Checking 2 scenario files",
		"PASS  good (1/1)",
		"FAIL  bad (1/2)",
		"case 2: [strict]",
		"...",
		"expected allow, got deny",
		"blocked",
		"2 of 3 cases passed. 1 of 2 scenarios failed.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	out, err := FormatJSON([]*RunResult{{Name: "x", Total: 1, Passed: 1}})
	if err != nil {
		t.Fatal(err)
	}
	var back []RunResult
	if err := json.Unmarshal([]byte(out), &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 1 || back[0].Name != "x" {
		t.Fatalf("got %+v", back)
	}
}
