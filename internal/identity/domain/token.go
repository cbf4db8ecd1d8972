package domain

// TokenPair is what a successful login or refresh returns: a short-lived
// access token and a longer-lived refresh token, both signed JWTs over
// the same subject payload.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionProfile is the user profile echoed alongside the token pair on
// login and refresh.
type SessionProfile struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Phone    string `json:"phone,omitempty"`

	TokenPair
}
