package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/assetdesk/console/internal/core/domain"
	"github.com/assetdesk/console/internal/core/ports"
	"github.com/assetdesk/console/internal/pkg/tokeninfo"
)

// AuthHandler serves the session endpoints. Per-profile transitions go
// through the profile's SessionService; password reset needs no session and
// uses the raw AuthAPI.
type AuthHandler struct {
	auth ports.AuthAPI
}

func NewAuthHandler(auth ports.AuthAPI) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password"        validate:"required"`
}

type registerRequest struct {
	Username  string `json:"username"  validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
}

type passwordChangeRequest struct {
	OldPassword        string `json:"oldPassword"        validate:"required"`
	NewPassword        string `json:"newPassword"        validate:"required,min=8"`
	NewPasswordConfirm string `json:"newPasswordConfirm" validate:"required,eqfield=NewPassword"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetConfirmRequest struct {
	NewPassword        string `json:"newPassword"        validate:"required,min=8"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"required,eqfield=NewPassword"`
}

// sessionResponse is the public view of a session snapshot. Tokens never
// leave the server.
type sessionResponse struct {
	domain.Session
	AccessSubject   string     `json:"accessSubject,omitempty"`
	AccessExpiresAt *time.Time `json:"accessExpiresAt,omitempty"`
	// AccessExpired means the next API call will go through a token refresh.
	AccessExpired bool `json:"accessExpired,omitempty"`
}

type registerResponse struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
	Next    string      `json:"next"`
}

// ErrorBody is the envelope of every error response.
type ErrorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *AuthHandler) sessionView(s domain.Session) sessionResponse {
	resp := sessionResponse{Session: s}
	if s.Tokens == nil {
		return resp
	}
	info, ok := tokeninfo.Inspect(s.Tokens.Access)
	if !ok {
		return resp
	}
	resp.AccessSubject = info.Subject
	resp.AccessExpired = info.Expired(time.Now())
	if !info.ExpiresAt.IsZero() {
		exp := info.ExpiresAt.UTC()
		resp.AccessExpiresAt = &exp
	}
	return resp
}

// Login authenticates the profile against the asset API.
//
// @Summary      Log in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Success      303   "Already authenticated, redirected to /dashboard"
// @Failure      400   {object}  ErrorBody
// @Failure      401   {object}  ErrorBody
// @Failure      502   {object}  ErrorBody
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}

	if p.Session.Snapshot().IsAuthenticated {
		return c.Redirect(http.StatusSeeOther, domain.LandingPath)
	}

	s, err := p.Session.Login(c.Request().Context(), domain.LoginCredentials{
		UsernameOrEmail: req.UsernameOrEmail,
		Password:        req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.sessionView(s))
}

// Register creates an account. The profile stays anonymous; the client is
// pointed at the login view.
//
// @Summary      Register
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "New account"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  ErrorBody
// @Failure      502   {object}  ErrorBody
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}

	res, err := p.Session.Register(c.Request().Context(), domain.Registration{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	msg := res.Message
	if msg == "" {
		msg = "Registration successful. Please log in."
	}
	return c.JSON(http.StatusCreated, registerResponse{Message: msg, User: res.User, Next: domain.LoginPath})
}

// Logout ends the session. It always succeeds locally.
//
// @Summary      Log out
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.sessionView(p.Session.Logout(c.Request().Context())))
}

// Session returns the current snapshot.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.sessionView(p.Session.Snapshot()))
}

// ClearError drops the error shown on the session.
//
// @Summary      Dismiss session error
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session/error [delete]
func (h *AuthHandler) ClearError(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.sessionView(p.Session.ClearError()))
}

// Profile returns the authenticated user.
//
// @Summary      Current user
// @Tags         account
// @Produce      json
// @Success      200  {object}  domain.User
// @Success      303  "Not authenticated, redirected to /login"
// @Router       /profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}
	s := p.Session.Snapshot()
	if s.User == nil {
		return domain.ErrNotAuthenticated
	}
	return c.JSON(http.StatusOK, s.User)
}

// ChangePassword changes the authenticated user's password.
//
// @Summary      Change password
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      passwordChangeRequest  true  "Old and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  ErrorBody
// @Router       /password/change [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req passwordChangeRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p, err := ctxProfile(c)
	if err != nil {
		return err
	}

	if err := p.Account.ChangePassword(c.Request().Context(), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password changed successfully."})
}

// RequestPasswordReset asks the asset API to mail a reset link.
//
// @Summary      Request password reset
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  ErrorBody
// @Router       /password/reset [post]
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req passwordResetRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "If the address is registered, a reset link has been sent."})
}

// ConfirmPasswordReset sets a new password from a mailed reset link.
//
// @Summary      Confirm password reset
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        uid    path      string                       true  "Encoded user id"
// @Param        token  path      string                       true  "Reset token"
// @Param        body   body      passwordResetConfirmRequest  true  "New password"
// @Success      200    {object}  messageResponse
// @Failure      400    {object}  ErrorBody
// @Router       /password/reset-confirm/{uid}/{token} [post]
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	var req passwordResetConfirmRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if err := h.auth.ConfirmPasswordReset(c.Request().Context(), c.Param("uid"), c.Param("token"), req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password has been reset. Please log in."})
}
