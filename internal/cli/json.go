package cli

import (
	stderrors "errors"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/rileyhilliard/pulse/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound    = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid     = "CONFIG_INVALID"
	ErrCodeFetchFailed       = "FETCH_FAILED"
	ErrCodeParseFailed       = "PARSE_FAILED"
	ErrCodeWidgetNotFound    = "WIDGET_NOT_FOUND"
	ErrCodeWidgetDuplicate   = "WIDGET_DUPLICATE"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeRenderFailed      = "RENDER_FAILED"
	ErrCodeSSHTimeout        = "SSH_TIMEOUT"
	ErrCodeSSHAuthFailed     = "SSH_AUTH_FAILED"
	ErrCodeSSHHostKey        = "SSH_HOST_KEY"
	ErrCodeSSHConnectionFail = "SSH_CONNECTION_FAILED"
	ErrCodeUnknown           = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	env := JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var pErr *errors.Error
	if stderrors.As(err, &pErr) {
		out := &JSONError{
			Code:       mapErrorCode(pErr),
			Message:    pErr.Message,
			Suggestion: pErr.Suggestion,
		}
		if pErr.Cause != nil {
			out.Details = map[string]interface{}{"cause": pErr.Cause.Error()}
		}
		return out
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(e *errors.Error) string {
	msgLower := strings.ToLower(e.Message)
	if e.Cause != nil {
		msgLower += " " + strings.ToLower(e.Cause.Error())
	}

	switch e.Code {
	case errors.ErrConfig:
		if strings.Contains(msgLower, "not found") || strings.Contains(msgLower, "couldn't find") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrFetch:
		return ErrCodeFetchFailed
	case errors.ErrParse:
		return ErrCodeParseFailed
	case errors.ErrNotFound:
		return ErrCodeWidgetNotFound
	case errors.ErrDuplicate:
		return ErrCodeWidgetDuplicate
	case errors.ErrValidation:
		return ErrCodeValidation
	case errors.ErrRender:
		return ErrCodeRenderFailed
	case errors.ErrSSH:
		switch {
		case strings.Contains(msgLower, "timed out") || strings.Contains(msgLower, "timeout"):
			return ErrCodeSSHTimeout
		case strings.Contains(msgLower, "host key"):
			return ErrCodeSSHHostKey
		case strings.Contains(msgLower, "auth"):
			return ErrCodeSSHAuthFailed
		}
		return ErrCodeSSHConnectionFail
	}

	return ErrCodeUnknown
}
