//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/spikeside/team-manager/internal/config"
	"github.com/spikeside/team-manager/internal/database"
	"github.com/spikeside/team-manager/internal/handler"
	"github.com/spikeside/team-manager/internal/mailer"
	"github.com/spikeside/team-manager/internal/repository"
	"github.com/spikeside/team-manager/internal/router"
	"github.com/spikeside/team-manager/internal/service"
)

// captureSender collects outbound mail instead of talking to SMTP.
type captureSender struct{ mails chan mailer.Email }

func (s *captureSender) Send(e mailer.Email) error {
	s.mails <- e
	return nil
}

type testEnv struct {
	e     *echo.Echo
	mails chan mailer.Email
}

// newTestEnv boots the full HTTP stack against a throwaway MySQL
// container: real router, middleware, repositories and notifier; only
// SMTP and object storage are absent.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcmysql.Run(ctx, "mysql:8.4",
		tcmysql.WithDatabase("team_manager_test"),
		tcmysql.WithUsername("app"),
		tcmysql.WithPassword("secret"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx,
		"charset=utf8mb4", "parseTime=true", "loc=UTC", "multiStatements=true")
	require.NoError(t, err)

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx))
	require.NoError(t, database.Migrate(db))

	cfg := config.Config{
		Env:             "test",
		JWTSecret:       "integration-test-secret",
		AccessTTLMin:    15,
		SessionTTLDays:  7,
		RememberTTLDays: 30,
		BcryptCost:      4,
		AppBaseURL:      "http://app.test",
	}

	mails := make(chan mailer.Email, 16)
	notifier := service.NewNotifier(&captureSender{mails: mails}, 1, 16, cfg.AppBaseURL)
	t.Cleanup(notifier.Close)

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	sessions := repository.NewSessionRepo(db)
	resets := repository.NewResetTokenRepo(db)
	teams := repository.NewTeamRepo(db)

	e := echo.New()
	router.Register(e, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, db, users, roles, sessions, resets, notifier),
		Profile: handler.NewProfileHandler(users, nil),
		Teams:   handler.NewTeamHandler(teams, users, notifier),
		Stats:   handler.NewStatsHandler(users, teams, nil),
	}, cfg.JWTSecret)

	return &testEnv{e: e, mails: mails}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) register(t *testing.T, email, username, password, role string) {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/v1/auth/register", echo.Map{
		"email":            email,
		"username":         username,
		"password":         password,
		"confirm_password": password,
		"first_name":       "Alex",
		"last_name":        "Petrov",
		"role":             role,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

type loginResult struct {
	Access struct {
		Token string `json:"token"`
	} `json:"access"`
	Session struct {
		Token string `json:"token"`
	} `json:"session"`
}

func (env *testEnv) login(t *testing.T, email, password string) loginResult {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/v1/auth/login",
		echo.Map{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out loginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

var resetLinkRe = regexp.MustCompile(`/reset-password/([A-Za-z0-9_-]+)`)

func (env *testEnv) waitForResetToken(t *testing.T) string {
	t.Helper()
	select {
	case m := <-env.mails:
		match := resetLinkRe.FindStringSubmatch(m.Body)
		require.Len(t, match, 2, "reset mail carries no token link")
		return match[1]
	case <-time.After(5 * time.Second):
		t.Fatal("no reset mail delivered")
		return ""
	}
}

// A failed login must not reveal whether the email exists: unknown
// address and wrong password come back byte-identical.
func TestLoginFailuresLookIdentical(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "casey@example.com", "caseyj", "swordfish99", "player")

	unknown := env.do(t, http.MethodPost, "/v1/auth/login",
		echo.Map{"email": "nobody@example.com", "password": "swordfish99"}, "")
	wrongPass := env.do(t, http.MethodPost, "/v1/auth/login",
		echo.Map{"email": "casey@example.com", "password": "not-the-password"}, "")

	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, unknown.Body.String(), wrongPass.Body.String())
}

// Redeeming a reset token changes the password exactly once. Replaying
// the same token with a different new password is rejected and leaves
// the credential set by the first redemption in place.
func TestResetTokenIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "dana@example.com", "danam", "original-pw1", "player")

	rec := env.do(t, http.MethodPost, "/v1/auth/reset-request",
		echo.Map{"email": "dana@example.com"}, "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	token := env.waitForResetToken(t)

	rec = env.do(t, http.MethodGet, "/v1/auth/reset/"+token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/auth/reset", echo.Map{
		"token": token, "password": "first-new-pw1", "confirm_password": "first-new-pw1",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Replay with a different password.
	rec = env.do(t, http.MethodPost, "/v1/auth/reset", echo.Map{
		"token": token, "password": "second-new-pw1", "confirm_password": "second-new-pw1",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Only the first redemption took effect.
	env.login(t, "dana@example.com", "first-new-pw1")
	for _, stale := range []string{"second-new-pw1", "original-pw1"} {
		rec = env.do(t, http.MethodPost, "/v1/auth/login",
			echo.Map{"email": "dana@example.com", "password": stale}, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

// Email and username uniqueness is case-insensitive: a second account
// differing only by letter case is rejected.
func TestRegisterRejectsCaseVariantDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jordan@example.com", "jordanb", "swordfish99", "player")

	rec := env.do(t, http.MethodPost, "/v1/auth/register", echo.Map{
		"email":            "Jordan@Example.COM",
		"username":         "jordanz",
		"password":         "swordfish99",
		"confirm_password": "swordfish99",
		"first_name":       "Jordan",
		"last_name":        "Blake",
		"role":             "player",
	}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "email already registered")

	rec = env.do(t, http.MethodPost, "/v1/auth/register", echo.Map{
		"email":            "jordan.b@example.com",
		"username":         "JordanB",
		"password":         "swordfish99",
		"confirm_password": "swordfish99",
		"first_name":       "Jordan",
		"last_name":        "Blake",
		"role":             "player",
	}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "username already taken")
}

func TestSessionRefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "riley@example.com", "rileyq", "swordfish99", "player")
	res := env.login(t, "riley@example.com", "swordfish99")

	rec := env.do(t, http.MethodPost, "/v1/auth/refresh",
		echo.Map{"session_token": res.Session.Token}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"access"`)

	rec = env.do(t, http.MethodPost, "/v1/auth/refresh",
		echo.Map{"session_token": "not-a-session"}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/auth/logout",
		echo.Map{"session_token": res.Session.Token}, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/auth/refresh",
		echo.Map{"session_token": res.Session.Token}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTeamPayloadsUseSnakeCase(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "morgan@example.com", "morganc", "swordfish99", "coach")
	res := env.login(t, "morgan@example.com", "swordfish99")

	rec := env.do(t, http.MethodPost, "/v1/teams",
		echo.Map{"name": "Spike City"}, res.Access.Token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/v1/teams", nil, res.Access.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"created_at"`)
	require.NotContains(t, rec.Body.String(), `"CreatedAt"`)
}
