package domain

// TokenPair is the bearer credential pair issued by the asset API.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// WithAccess returns a copy of the pair carrying a new access token.
func (t TokenPair) WithAccess(access string) TokenPair {
	t.Access = access
	return t
}

// LoginCredentials is the payload of POST /auth/login/.
type LoginCredentials struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// Registration is the payload of POST /auth/register/.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginResult struct {
	Message string    `json:"message"`
	User    User      `json:"user"`
	Tokens  TokenPair `json:"tokens"`
}

type RegisterResult struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// RefreshResult carries the new access token. Refresh is only set when the
// API rotates refresh tokens.
type RefreshResult struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// PasswordChange is the payload of POST /auth/password/change/.
type PasswordChange struct {
	OldPassword        string `json:"oldPassword"`
	NewPassword        string `json:"newPassword"`
	NewPasswordConfirm string `json:"newPasswordConfirm"`
}

// PasswordResetConfirm is the payload of POST /auth/password/reset-confirm/{uid}/{token}/.
type PasswordResetConfirm struct {
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}
