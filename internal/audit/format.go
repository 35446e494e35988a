package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const separator = "──────────────────────────────────────────────────────────────────"

// FormatText renders a query result as a fixed-width table.
func FormatText(r *QueryResult) string {
	if len(r.Entries) == 0 {
		return "No entries found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %-6s %-6s %-9s %s\n", "TIME", "RESULT", "MODE", "STAGE", "COMMAND")
	b.WriteString(separator + "\n")
	for _, e := range r.Entries {
		fmt.Fprintf(&b, "%-10s %-6s %-6s %-9s %s\n",
			clock(e.Timestamp), strings.ToUpper(e.Decision), e.Mode, e.Stage, truncate(e.Command, 60))
		if !e.Allowed() && e.Reason != "" {
			fmt.Fprintf(&b, "%-10s └─ %s\n", "", e.Reason)
		}
	}
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Summary: %d total, %d allowed, %d denied\n",
		r.Summary.Total, r.Summary.Allowed, r.Summary.Denied)
	return b.String()
}

// FormatJSON renders a query result as indented JSON.
func FormatJSON(r *QueryResult) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal query result: %w", err)
	}
	return string(data), nil
}

func clock(ts string) string {
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04:05")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
