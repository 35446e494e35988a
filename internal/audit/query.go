package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Filter selects entries from a log. Zero fields match everything.
type Filter struct {
	RequestID string
	Decision  string
	Stage     string
	Since     time.Time
	Until     time.Time
	Limit     int // keep only the last Limit matches
}

// Summary counts decisions over a query result.
type Summary struct {
	Total          int    `json:"total"`
	Allowed        int    `json:"allowed"`
	Denied         int    `json:"denied"`
	FirstTimestamp string `json:"first_timestamp,omitempty"`
	LastTimestamp  string `json:"last_timestamp,omitempty"`
}

// QueryResult holds matching entries in log order.
type QueryResult struct {
	Entries []Entry `json:"entries"`
	Summary Summary `json:"summary"`
}

// Query reads the log at path and returns entries matching f.
// Malformed lines are skipped.
func Query(path string, f Filter) (*QueryResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer file.Close()

	res := &QueryResult{}
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		if !f.match(e) {
			continue
		}
		res.Entries = append(res.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	if f.Limit > 0 && len(res.Entries) > f.Limit {
		res.Entries = res.Entries[len(res.Entries)-f.Limit:]
	}
	for _, e := range res.Entries {
		res.Summary.add(e)
	}
	return res, nil
}

func (f Filter) match(e Entry) bool {
	if f.RequestID != "" && e.RequestID != f.RequestID {
		return false
	}
	if f.Decision != "" && e.Decision != f.Decision {
		return false
	}
	if f.Stage != "" && e.Stage != f.Stage {
		return false
	}
	if f.Since.IsZero() && f.Until.IsZero() {
		return true
	}
	ts, err := time.Parse(TimestampFormat, e.Timestamp)
	if err != nil {
		return false
	}
	if !f.Since.IsZero() && ts.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && ts.After(f.Until) {
		return false
	}
	return true
}

func (s *Summary) add(e Entry) {
	s.Total++
	if e.Allowed() {
		s.Allowed++
	} else {
		s.Denied++
	}
	if s.FirstTimestamp == "" {
		s.FirstTimestamp = e.Timestamp
	}
	s.LastTimestamp = e.Timestamp
}
