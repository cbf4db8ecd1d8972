// Package dispatch maps inbound action names onto their handlers and
// turns service outcomes into structured results. It never sees request
// ids; correlation is the responder's job.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/parleychat/parley/internal/identity/domain"
	"github.com/parleychat/parley/internal/identity/service"
	"github.com/parleychat/parley/internal/identity/store"
	"github.com/parleychat/parley/pkg/slogx"
)

// Action names recognized by the dispatcher.
const (
	ActionRegistration = "registration"
	ActionConfirmEmail = "confirm_email"
	ActionLogin        = "login"
	ActionRefreshToken = "refresh_token"
	ActionGetAllUsers  = "get_all_users"
	ActionUpdateUser   = "update_user"
)

type Dispatcher struct {
	Registration *service.RegistrationService
	Confirmation *service.ConfirmationService
	Tokens       *service.TokenService
	Directory    *service.DirectoryService
}

// Dispatch executes one command and returns the result to publish. A nil
// result with a non-nil error is an infrastructure failure: the caller
// logs it and drops the command without responding. Unrecognized actions
// get an explicit unknown_action error so the caller is never stranded
// waiting on a correlation id.
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.CommandMessage) (*domain.Result, error) {
	switch msg.Action {
	case ActionRegistration:
		return d.handleRegistration(ctx, msg)
	case ActionConfirmEmail:
		return d.handleConfirmEmail(ctx, msg)
	case ActionLogin:
		return d.handleLogin(ctx, msg)
	case ActionRefreshToken:
		return d.handleRefreshToken(ctx, msg)
	case ActionGetAllUsers:
		return d.handleGetAllUsers(ctx, msg)
	case ActionUpdateUser:
		return d.handleUpdateUser(ctx, msg)
	default:
		slogx.FromContext(ctx).Warn("unknown action", "action", msg.Action)
		res := domain.Fail(msg.Action, domain.CodeUnknownAction, "unknown action")
		return &res, nil
	}
}

func (d *Dispatcher) handleRegistration(ctx context.Context, msg domain.CommandMessage) (*domain.Result, error) {
	var p RegisterPayload
	if res, err := decode(msg, &p); res != nil || err != nil {
		return res, err
	}

	_, err := d.Registration.Register(ctx, service.RegisterInput{
		Email:    p.Email,
		FullName: p.FullName,
		Role:     p.Role,
		Password: p.Password,
		Phone:    p.Phone,
		Address:  p.Address,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			return fail(msg.Action, domain.CodeDuplicateEmail, "a user with this email already exists"), nil
		}
		return internal(ctx, msg.Action, err)
	}

	res := domain.Succeed(msg.Action,
		fmt.Sprintf("confirmation code sent to %s", p.Email), nil)
	return &res, nil
}

func (d *Dispatcher) handleConfirmEmail(ctx context.Context, msg domain.CommandMessage) (*domain.Result, error) {
	var p ConfirmPayload
	if res, err := decode(msg, &p); res != nil || err != nil {
		return res, err
	}

	if err := d.Confirmation.Confirm(ctx, p.Email, p.ConfirmationCode); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return fail(msg.Action, domain.CodeUserNotFound, "user not found"), nil
		case errors.Is(err, service.ErrAlreadyConfirmed):
			return fail(msg.Action, domain.CodeAlreadyConfirmed, "email is already confirmed"), nil
		case errors.Is(err, service.ErrCodeExpired):
			return fail(msg.Action, domain.CodeExpired, "confirmation code has expired"), nil
		case errors.Is(err, service.ErrCodeMismatch):
			return fail(msg.Action, domain.CodeMismatch, "wrong confirmation code"), nil
		default:
			return internal(ctx, msg.Action, err)
		}
	}

	res := domain.Succeed(msg.Action, "email confirmed", nil)
	return &res, nil
}

func (d *Dispatcher) handleLogin(ctx context.Context, msg domain.CommandMessage) (*domain.Result, error) {
	var p LoginPayload
	if res, err := decode(msg, &p); res != nil || err != nil {
		return res, err
	}

	profile, err := d.Tokens.Login(ctx, p.Email, p.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return fail(msg.Action, domain.CodeUserNotFound, "user not found"), nil
		case errors.Is(err, service.ErrEmailUnconfirmed):
			return fail(msg.Action, domain.CodeEmailUnconfirmed, "email is not confirmed"), nil
		case errors.Is(err, service.ErrWrongPassword):
			return fail(msg.Action, domain.CodeWrongPassword, "wrong password"), nil
		default:
			return internal(ctx, msg.Action, err)
		}
	}

	res := domain.Succeed(msg.Action, "", profile)
	return &res, nil
}

func (d *Dispatcher) handleRefreshToken(ctx context.Context, msg domain.CommandMessage) (*domain.Result, error) {
	var p RefreshPayload
	if res, err := decode(msg, &p); res != nil || err != nil {
		return res, err
	}

	profile, err := d.Tokens.Refresh(ctx, p.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			return fail(msg.Action, domain.CodeTokenExpired, "refresh token has expired"), nil
		case errors.Is(err, service.ErrTokenInvalid):
			return fail(msg.Action, domain.CodeTokenInvalid, "refresh token is invalid"), nil
		case errors.Is(err, service.ErrUserNotFound):
			return fail(msg.Action, domain.CodeUserNotFound, "user not found"), nil
		default:
			return internal(ctx, msg.Action, err)
		}
	}

	res := domain.Succeed(msg.Action, "", profile)
	return &res, nil
}

func (d *Dispatcher) handleGetAllUsers(ctx context.Context, msg domain.CommandMessage) (*domain.Result, error) {
	users, err := d.Directory.ListUsers(ctx)
	if err != nil {
		return internal(ctx, msg.Action, err)
	}

	res := domain.Succeed(msg.Action, "", map[string]any{"users": users})
	return &res, nil
}

func (d *Dispatcher) handleUpdateUser(ctx context.Context, msg domain.CommandMessage) (*domain.Result, error) {
	var p UpdateUserPayload
	if res, err := decode(msg, &p); res != nil || err != nil {
		return res, err
	}

	upd := store.UserUpdate{
		FullName:  p.FullName,
		Role:      p.Role,
		Phone:     p.Phone,
		Address:   p.Address,
		IsBlocked: p.IsBlocked,
	}
	if p.BlockedUntil != nil {
		until, err := time.Parse(time.RFC3339, *p.BlockedUntil)
		if err != nil {
			return fail(msg.Action, domain.CodeMissingFields, "blocked_until must be RFC 3339"), nil
		}
		upd.BlockedUntil = &until
	}

	if err := d.Directory.UpdateUser(ctx, p.UserID, upd); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return fail(msg.Action, domain.CodeUserNotFound, "user not found"), nil
		}
		return internal(ctx, msg.Action, err)
	}

	res := domain.Succeed(msg.Action, "user updated", nil)
	return &res, nil
}

// validatable is implemented by every payload type.
type validatable interface {
	Validate() error
}

// decode unmarshals and validates an action payload. A validation
// failure produces an error result; undecodable JSON is an
// infrastructure error and the command is dropped upstream.
func decode(msg domain.CommandMessage, p validatable) (*domain.Result, error) {
	raw := msg.Payload()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, fmt.Errorf("dispatch: decode %s payload: %w", msg.Action, err)
		}
	}
	if err := p.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return fail(msg.Action, verr.Code, verr.Text), nil
		}
		return nil, err
	}
	return nil, nil
}

func fail(action, code, text string) *domain.Result {
	res := domain.Fail(action, code, text)
	return &res
}

// internal logs the underlying failure and answers with a generic
// internal_error; storage details never leak to callers.
func internal(ctx context.Context, action string, err error) (*domain.Result, error) {
	slogx.FromContext(ctx).Error("handler failed", "action", action, "error", err)
	res := domain.Fail(action, domain.CodeInternalError, "internal error")
	return &res, nil
}
