package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spikeside/team-manager/internal/config"
	"github.com/spikeside/team-manager/internal/model"
	"github.com/spikeside/team-manager/internal/queue"
	"github.com/spikeside/team-manager/internal/repository"
	"github.com/spikeside/team-manager/internal/service"
	"github.com/spikeside/team-manager/internal/utils"
	"github.com/spikeside/team-manager/internal/validation"
)

// resetTokenTTL is the fixed validity window of password-reset tokens.
const resetTokenTTL = 24 * time.Hour

// AuthHandler bundles dependencies for the auth endpoints. It holds the
// raw DB handle besides the repositories because registration and reset
// redemption span multiple tables and must commit as one transaction.
type AuthHandler struct {
	Cfg      config.Config
	DB       *sql.DB
	Users    *repository.UserRepo
	Roles    *repository.RoleRepo
	Sessions *repository.SessionRepo
	Resets   *repository.ResetTokenRepo
	Notifier *service.Notifier
}

func NewAuthHandler(cfg config.Config, db *sql.DB, u *repository.UserRepo, r *repository.RoleRepo,
	s *repository.SessionRepo, t *repository.ResetTokenRepo, n *service.Notifier) *AuthHandler {
	return &AuthHandler{Cfg: cfg, DB: db, Users: u, Roles: r, Sessions: s, Resets: t, Notifier: n}
}

// ----- DTOs -----

type registerReq struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	Role            string `json:"role"` // player | coach | parent
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}
type logoutReq struct {
	SessionToken string `json:"session_token"`
}
type refreshReq struct {
	SessionToken string `json:"session_token"`
}
type resetRequestReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID           uint64     `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone"`
	Role         string     `json:"role"`
	ProfileImage string     `json:"profile_image,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Session tokenPart `json:"session"`
}

func newUserPart(u model.User) userPart {
	p := userPart{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		Role:         u.RoleName,
		ProfileImage: u.ProfileImage,
	}
	if u.LastLogin.Valid {
		t := u.LastLogin.Time
		p.LastLogin = &t
	}
	return p
}

// Register creates a new account. Field validation is pure; uniqueness
// runs as a pre-check for friendly errors while the UNIQUE constraints
// catch whoever loses a concurrent race. Role rows are created lazily
// inside the same transaction as the user insert.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	input := validation.Registration{
		Email:           validation.NormalizeEmail(req.Email),
		Username:        validation.NormalizeUsername(req.Username),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Phone:           strings.TrimSpace(req.Phone),
		Role:            strings.ToLower(strings.TrimSpace(req.Role)),
	}
	if errs := validation.ValidateRegistration(input); errs != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": errs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if taken, err := h.Users.EmailTaken(ctx, input.Email, 0); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	} else if taken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}
	if taken, err := h.Users.UsernameTaken(ctx, input.Username, 0); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	} else if taken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
	}

	u := model.User{
		Email:     input.Email,
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		RoleName:  input.Role,
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	defer func() { _ = tx.Rollback() }()

	role, err := h.Roles.GetOrCreateTx(ctx, tx, input.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	u.RoleID = role.ID
	if err := h.Users.CreateTx(ctx, tx, &u, input.Password, h.Cfg.BcryptCost); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	publishAuthEvent(queue.EventUserRegistered, u)

	return c.JSON(http.StatusCreated, echo.Map{"user": newUserPart(u)})
}

// Login verifies credentials and establishes a session. Unknown email
// and wrong password return the same body and status so the response
// carries no signal about which one was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := validation.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	now := time.Now().UTC()
	if err := h.Users.SetLastLogin(ctx, u.ID, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	u.LastLogin = sql.NullTime{Time: now, Valid: true}

	ttlDays := h.Cfg.SessionTTLDays
	if req.Remember {
		ttlDays = h.Cfg.RememberTTLDays
	}
	session, err := utils.NewSessionToken(time.Duration(ttlDays) * 24 * time.Hour)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	if err := h.Sessions.Store(ctx, u.ID, utils.HashSessionRaw(session.Raw), session.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.RoleName, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    newUserPart(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Session: tokenPart{Token: session.Raw, Expires: session.Exp}, // raw back to client
	})
}

// Refresh exchanges a live session token for a fresh access token, so
// clients can keep short-lived JWTs without re-sending the password.
// The session itself is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.SessionToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Sessions.Validate(ctx, utils.HashSessionRaw(strings.TrimSpace(req.SessionToken)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.RoleName, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":   newUserPart(u),
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes the presented session token.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.SessionToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.RevokeByHash(ctx, utils.HashSessionRaw(strings.TrimSpace(req.SessionToken))); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestReset issues a password-reset token and mails it. The response
// is 202 no matter whether the email belongs to an account, so the
// endpoint cannot be used to enumerate users. Email delivery is handed
// to the bounded notifier; this handler never waits on SMTP.
func (h *AuthHandler) RequestReset(c echo.Context) error {
	var req resetRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := validation.NormalizeEmail(req.Email)

	accepted := func() error {
		return c.JSON(http.StatusAccepted, echo.Map{
			"message": "check your email for instructions to reset your password",
		})
	}
	if email == "" {
		return accepted()
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return accepted()
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	token, err := utils.NewResetToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	// Older tokens stay live until they expire; issuing does not revoke them.
	if err := h.Resets.Create(ctx, u.ID, token, time.Now().UTC().Add(resetTokenTTL)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}

	h.Notifier.SendPasswordReset(u, token)
	return accepted()
}

// ValidateReset checks a token without consuming it, so a client can
// decide whether to render the reset form. All failure modes collapse
// into one message.
func (h *AuthHandler) ValidateReset(c echo.Context) error {
	token := c.Param("token")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Resets.Validate(ctx, token); err != nil {
		return resetTokenError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": true})
}

// Reset redeems a token: the new password is written and the token
// marked used inside one transaction, so a consumed token always means
// the credential actually changed. All active sessions are revoked
// afterwards so the old credential cannot live on through them.
func (h *AuthHandler) Reset(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := validation.ValidateNewPassword(req.Password, req.ConfirmPassword); errs != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": errs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reset, err := h.Resets.Validate(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		return resetTokenError(c, err)
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	defer func() { _ = tx.Rollback() }()

	if err := h.Users.UpdatePasswordTx(ctx, tx, reset.UserID, req.Password, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if err := h.Resets.ConsumeTx(ctx, tx, reset.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}

	if err := h.Sessions.RevokeAllForUser(ctx, reset.UserID); err != nil {
		log.Printf("reset: revoke sessions for user %d failed: %v", reset.UserID, err)
	}
	if u, err := h.Users.GetByID(ctx, reset.UserID); err == nil {
		publishAuthEvent(queue.EventPasswordChanged, u)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "your password has been reset"})
}

// resetTokenError hides which check failed. Internally the repository
// distinguishes not-found, expired and already-used; a caller probing
// tokens sees the same response for all three.
func resetTokenError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrTokenNotFound),
		errors.Is(err, repository.ErrTokenExpired),
		errors.Is(err, repository.ErrTokenUsed):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired reset token"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
}

// publishAuthEvent pushes an audit event to the broker off the request
// path. Failures are logged inside the publisher and ignored here.
func publishAuthEvent(kind string, u model.User) {
	ev := queue.AuthEvent{
		Kind:     kind,
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		At:       time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue.PublishAuthEvent(ctx, ev)
	}()
}
