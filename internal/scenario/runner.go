// Package scenario runs YAML files of gate assertions: each case names a
// command line and whether the gate should allow or deny it.
package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/cmdgate/internal/gate"
	"github.com/ppiankov/cmdgate/internal/mode"
)

const (
	ExpectAllow = "allow"
	ExpectDeny  = "deny"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	for i, c := range s.Cases {
		switch strings.ToLower(strings.TrimSpace(c.Expect)) {
		case ExpectAllow, ExpectDeny:
		default:
			return nil, fmt.Errorf("case %d: expect must be %q or %q, got %q", i+1, ExpectAllow, ExpectDeny, c.Expect)
		}
	}
	return &s, nil
}

// Run evaluates every case against a fresh gate. Cases are independent and
// nothing is executed or audited.
func Run(ctx context.Context, s *Scenario) (*RunResult, error) {
	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	gates := map[mode.Mode]*gate.Gate{}
	gateFor := func(m mode.Mode) (*gate.Gate, error) {
		if g, ok := gates[m]; ok {
			return g, nil
		}
		g, err := gate.New(gate.Config{
			Mode:            mode.Fixed(m),
			ProjectCommands: s.ProjectCommands,
			Logger:          quiet,
		})
		if err != nil {
			return nil, err
		}
		gates[m] = g
		return g, nil
	}

	for i, c := range s.Cases {
		raw := s.Mode
		if c.Mode != "" {
			raw = c.Mode
		}
		m := mode.ParseName(raw)

		g, err := gateFor(m)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		d := g.Check(ctx, c.Command)

		actual := ExpectDeny
		if d.Allowed {
			actual = ExpectAllow
		}
		expected := strings.ToLower(strings.TrimSpace(c.Expect))

		cr := CaseResult{
			Index:    i + 1,
			Command:  c.Command,
			Mode:     m.String(),
			Expected: expected,
			Actual:   actual,
			Stage:    string(d.Stage),
			Reason:   d.Reason,
		}
		if actual == expected {
			cr.Passed = true
			result.Passed++
		} else {
			result.Failed++
		}
		result.Cases = append(result.Cases, cr)
	}

	return result, nil
}

// LoadAndRun reads a scenario file and runs it.
func LoadAndRun(ctx context.Context, path string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	result, err := Run(ctx, s)
	if err != nil {
		return nil, err
	}
	result.File = path
	return result, nil
}
