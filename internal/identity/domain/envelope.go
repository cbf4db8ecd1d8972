package domain

import "encoding/json"

// CommandEnvelope is the inbound message shape on the requests topic:
// an opaque correlation token plus the command itself.
type CommandEnvelope struct {
	RequestID string         `json:"request_id"`
	Message   CommandMessage `json:"message"`
}

// CommandMessage carries the action name and its payload. Some producers
// wrap the payload one level deeper under "body"; Payload resolves both
// variants.
type CommandMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
	Body   *CommandBody    `json:"body,omitempty"`
}

type CommandBody struct {
	Data json.RawMessage `json:"data,omitempty"`
}

// Payload returns the action payload, preferring the body-wrapped form
// when present.
func (m CommandMessage) Payload() json.RawMessage {
	if m.Body != nil && len(m.Body.Data) > 0 {
		return m.Body.Data
	}
	return m.Data
}

// ResponseEnvelope is the outbound message shape: the handler result
// wrapped with the request id it answers. A response is never published
// without one.
type ResponseEnvelope struct {
	RequestID string `json:"request_id"`
	Message   Result `json:"message"`
}

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Stable machine-checkable result codes.
const (
	CodeMissingFields      = "missing_fields"
	CodeInvalidEmail       = "invalid_email"
	CodeInvalidPhone       = "invalid_phone"
	CodeDuplicateEmail     = "duplicate_email"
	CodeUserNotFound       = "user_not_found"
	CodeAlreadyConfirmed   = "already_confirmed"
	CodeMismatch           = "code_mismatch"
	CodeExpired            = "code_expired"
	CodeMissingCredentials = "missing_credentials"
	CodeEmailUnconfirmed   = "email_unconfirmed"
	CodeWrongPassword      = "wrong_password"
	CodeMissingToken       = "missing_token"
	CodeTokenExpired       = "token_expired"
	CodeTokenInvalid       = "token_invalid"
	CodeUnknownAction      = "unknown_action"
	CodeInternalError      = "internal_error"
)

// Result is the structured outcome of one handled command. Code is
// stable and machine-checkable; Text is for humans and may change.
type Result struct {
	Action string `json:"action"`
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Text   string `json:"text,omitempty"`
	Body   any    `json:"body,omitempty"`
}

// Succeed builds a success result for the given action.
func Succeed(action, text string, body any) Result {
	return Result{Action: action, Status: StatusSuccess, Text: text, Body: body}
}

// Fail builds an error result with a stable code.
func Fail(action, code, text string) Result {
	return Result{Action: action, Status: StatusError, Code: code, Text: text}
}
