package domain

import "time"

// User is the persisted user record. Email is the identity key and is
// globally unique; records are created unconfirmed by registration and
// are never hard-deleted by this service.
type User struct {
	ID           string
	Email        string // lowercased before storage
	FullName     string
	Role         string // opaque, not an enforced ACL
	Phone        string // normalized "+<digits>" form, optional
	Address      string // optional
	PasswordHash string // argon2id PHC encoded

	IsBlocked    bool
	BlockedUntil *time.Time

	// IsEmailConfirmed and the confirmation fields are mutually
	// exclusive: the code (and its expiry) is present iff the email is
	// not yet confirmed.
	IsEmailConfirmed      bool
	ConfirmationCode      *string
	ConfirmationExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicUser is the directory-listing view of a user. It deliberately has
// no credential field at all, so a password hash cannot leak through this
// boundary even by accident.
type PublicUser struct {
	ID               string     `json:"user_id"`
	Email            string     `json:"email"`
	FullName         string     `json:"full_name"`
	Role             string     `json:"role"`
	Phone            string     `json:"phone,omitempty"`
	Address          string     `json:"address,omitempty"`
	IsBlocked        bool       `json:"is_blocked"`
	BlockedUntil     *time.Time `json:"blocked_until,omitempty"`
	IsEmailConfirmed bool       `json:"is_email_confirmed"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Redact converts a full record into its public view.
func (u User) Redact() PublicUser {
	return PublicUser{
		ID:               u.ID,
		Email:            u.Email,
		FullName:         u.FullName,
		Role:             u.Role,
		Phone:            u.Phone,
		Address:          u.Address,
		IsBlocked:        u.IsBlocked,
		BlockedUntil:     u.BlockedUntil,
		IsEmailConfirmed: u.IsEmailConfirmed,
		CreatedAt:        u.CreatedAt,
	}
}
