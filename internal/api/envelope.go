package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire format version clients pin against.
const envelopeVersion = 1

// envelope is the uniform response wrapper for every endpoint.
// Successful responses carry data; errors flatten code/message/details
// (or a bare error string for simple failures) into the top level.
type envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the versioned envelope.
// Registered on the huma config so handlers return plain bodies.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, err := strconv.Atoi(status)
	if err != nil {
		code = 200
	}
	success := code < 400

	if apiErr, ok := v.(*APIError); ok {
		if apiErr.Code != "" {
			return &envelope{
				V:       envelopeVersion,
				Success: false,
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			}, nil
		}
		return &envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
		}, nil
	}

	if errVal, ok := v.(error); ok {
		return &envelope{
			V:       envelopeVersion,
			Success: false,
			Error:   errVal.Error(),
		}, nil
	}

	return &envelope{
		V:       envelopeVersion,
		Success: success,
		Data:    v,
	}, nil
}
