package audit

// Decision values recorded in Entry.Decision.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// Entry is one gate decision in the hash-chained JSONL audit log.
// Only scalar fields are used so json.Marshal output, and therefore the
// chain hash, is deterministic.
type Entry struct {
	Timestamp string `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
	Command   string `json:"command"`
	Name      string `json:"name,omitempty"`
	Mode      string `json:"mode"`
	Stage     string `json:"stage"`
	Validator string `json:"validator,omitempty"`
	Decision  string `json:"decision"`
	Reason    string `json:"reason,omitempty"`
	ExitCode  *int   `json:"exit_code,omitempty"`
	PrevHash  string `json:"prev_hash"`
}

// Allowed reports whether the entry records an allowing decision.
func (e Entry) Allowed() bool {
	return e.Decision == DecisionAllow
}
