package cmdgatev1

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// CheckRequest asks the gate to decide on Command.
type CheckRequest struct {
	Command   string
	RequestID string
}

// CheckResponse carries the gate's decision.
type CheckResponse struct {
	Allowed   bool
	Reason    string
	Stage     string
	Mode      string
	Name      string
	Validator string
	RequestID string
}

// Struct encodes r for the wire.
func (r *CheckRequest) Struct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		"command": structpb.NewStringValue(r.Command),
	}
	if r.RequestID != "" {
		fields["request_id"] = structpb.NewStringValue(r.RequestID)
	}
	return &structpb.Struct{Fields: fields}
}

// CheckRequestFromStruct decodes a request. Missing fields are empty.
func CheckRequestFromStruct(s *structpb.Struct) CheckRequest {
	return CheckRequest{
		Command:   str(s, "command"),
		RequestID: str(s, "request_id"),
	}
}

// Struct encodes r for the wire.
func (r *CheckResponse) Struct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"allowed":    structpb.NewBoolValue(r.Allowed),
		"reason":     structpb.NewStringValue(r.Reason),
		"stage":      structpb.NewStringValue(r.Stage),
		"mode":       structpb.NewStringValue(r.Mode),
		"name":       structpb.NewStringValue(r.Name),
		"validator":  structpb.NewStringValue(r.Validator),
		"request_id": structpb.NewStringValue(r.RequestID),
	}}
}

// CheckResponseFromStruct decodes a response. A missing or non-bool
// "allowed" field decodes as false.
func CheckResponseFromStruct(s *structpb.Struct) CheckResponse {
	return CheckResponse{
		Allowed:   s.GetFields()["allowed"].GetBoolValue(),
		Reason:    str(s, "reason"),
		Stage:     str(s, "stage"),
		Mode:      str(s, "mode"),
		Name:      str(s, "name"),
		Validator: str(s, "validator"),
		RequestID: str(s, "request_id"),
	}
}

func str(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}
