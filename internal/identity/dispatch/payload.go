package dispatch

import (
	"regexp"
	"strings"

	"github.com/parleychat/parley/internal/identity/domain"
)

// Each action carries its own payload type with its own required-field
// set, checked once here at the dispatch boundary. Handlers downstream
// see only validated input.

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// phoneRe matches the normalized international form: "+" followed by
	// 10 to 15 digits.
	phoneRe = regexp.MustCompile(`^\+[0-9]{10,15}$`)
)

// ValidationError carries a stable result code alongside the human text.
type ValidationError struct {
	Code string
	Text string
}

func (e *ValidationError) Error() string { return e.Text }

func invalid(code, text string) *ValidationError {
	return &ValidationError{Code: code, Text: text}
}

type RegisterPayload struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

func (p *RegisterPayload) Validate() error {
	if p.Email == "" || p.FullName == "" || p.Role == "" || p.Password == "" {
		return invalid(domain.CodeMissingFields, "email, full_name, role and password are required")
	}
	if !emailRe.MatchString(strings.TrimSpace(p.Email)) {
		return invalid(domain.CodeInvalidEmail, "email address is not valid")
	}
	if p.Phone != "" && !phoneRe.MatchString(p.Phone) {
		return invalid(domain.CodeInvalidPhone, "phone must be in international format, e.g. +71234567890")
	}
	return nil
}

type ConfirmPayload struct {
	Email            string `json:"email"`
	ConfirmationCode string `json:"confirmation_code"`
}

func (p *ConfirmPayload) Validate() error {
	if p.Email == "" || p.ConfirmationCode == "" {
		return invalid(domain.CodeMissingFields, "email and confirmation_code are required")
	}
	return nil
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p *LoginPayload) Validate() error {
	if p.Email == "" || p.Password == "" {
		return invalid(domain.CodeMissingCredentials, "email and password are required")
	}
	return nil
}

type RefreshPayload struct {
	RefreshToken string `json:"refresh_token"`
}

func (p *RefreshPayload) Validate() error {
	if p.RefreshToken == "" {
		return invalid(domain.CodeMissingToken, "refresh_token is required")
	}
	return nil
}

type UpdateUserPayload struct {
	UserID    string  `json:"user_id"`
	FullName  *string `json:"full_name,omitempty"`
	Role      *string `json:"role,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	IsBlocked *bool   `json:"is_blocked,omitempty"`

	// BlockedUntil is only applied together with is_blocked.
	BlockedUntil *string `json:"blocked_until,omitempty"` // RFC 3339
}

func (p *UpdateUserPayload) Validate() error {
	if p.UserID == "" {
		return invalid(domain.CodeMissingFields, "user_id is required")
	}
	if p.BlockedUntil != nil && p.IsBlocked == nil {
		return invalid(domain.CodeMissingFields, "blocked_until requires is_blocked")
	}
	if p.FullName == nil && p.Role == nil && p.Phone == nil &&
		p.Address == nil && p.IsBlocked == nil {
		return invalid(domain.CodeMissingFields, "at least one field to update is required")
	}
	if p.Phone != nil && *p.Phone != "" && !phoneRe.MatchString(*p.Phone) {
		return invalid(domain.CodeInvalidPhone, "phone must be in international format, e.g. +71234567890")
	}
	return nil
}
