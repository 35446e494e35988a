package cmdgate

import (
	"encoding/json"
	"net/http"
)

type checkRequest struct {
	Command string `json:"command"`
}

type checkResponse struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
	Stage     Stage  `json:"stage"`
	Mode      Mode   `json:"mode"`
	Name      string `json:"name,omitempty"`
	Validator string `json:"validator,omitempty"`
	RequestID string `json:"request_id"`
}

// Handler returns an http.Handler that answers POST {"command": "..."}
// with the gate's decision. Denied commands receive a 403 with the same
// JSON body.
func (c *Client) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req checkRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		res := c.Check(r.Context(), req.Command)
		w.Header().Set("Content-Type", "application/json")
		if !res.Allowed {
			w.WriteHeader(http.StatusForbidden)
		}
		json.NewEncoder(w).Encode(checkResponse{
			Allowed:   res.Allowed,
			Reason:    res.Reason,
			Stage:     res.Stage,
			Mode:      res.Mode,
			Name:      res.Name,
			Validator: res.Validator,
			RequestID: res.RequestID,
		})
	})
}
