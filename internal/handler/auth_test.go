package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Andressalasf/API-Store/internal/config"
	"github.com/Andressalasf/API-Store/internal/middleware"
	"github.com/Andressalasf/API-Store/internal/repository"
	"github.com/Andressalasf/API-Store/internal/utils"
)

const handlerSecret = "handler-secret"

func testConfig() config.Config {
	return config.Config{
		Env:        "test",
		JWTSecret:  handlerSecret,
		AccessTTL:  time.Hour,
		RefreshTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
}

func newAuthEnv(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := testConfig()
	return NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, body, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func userRow(password string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "password", "role", "avatar", "created_at"}).
		AddRow(1, "A", "a@x.com", password, "customer", "av", time.Now())
}

func TestRegister(t *testing.T) {
	h, mock := newAuthEnv(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("A", "a@x.com", sqlmock.AnyArg(), "customer", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := doJSON(t, h.Register, http.MethodPost,
		`{"name":"A","email":"a@x.com","password":"p"}`, "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"a@x.com"`)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_MissingFields(t *testing.T) {
	h, _ := newAuthEnv(t)

	rec := doJSON(t, h.Register, http.MethodPost, `{"email":"a@x.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Name, email and password are required")
}

func TestRegister_UnknownRoleFallsBackToCustomer(t *testing.T) {
	h, mock := newAuthEnv(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("A", "a@x.com", sqlmock.AnyArg(), "customer", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := doJSON(t, h.Register, http.MethodPost,
		`{"name":"A","email":"a@x.com","password":"p","role":"superuser"}`, "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"customer"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, mock := newAuthEnv(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	rec := doJSON(t, h.Register, http.MethodPost,
		`{"name":"A","email":"a@x.com","password":"p"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestLogin(t *testing.T) {
	h, mock := newAuthEnv(t)
	hash, err := utils.HashPassword("p", bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WithArgs("a@x.com").
		WillReturnRows(userRow(hash))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(uint64(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := doJSON(t, h.Login, http.MethodPost, `{"email":"a@x.com","password":"p"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_UnknownEmail(t *testing.T) {
	h, mock := newAuthEnv(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WillReturnError(sql.ErrNoRows)

	rec := doJSON(t, h.Login, http.MethodPost, `{"email":"ghost@x.com","password":"p"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestLogin_WrongPassword(t *testing.T) {
	h, mock := newAuthEnv(t)
	hash, err := utils.HashPassword("other", bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WillReturnRows(userRow(hash))

	rec := doJSON(t, h.Login, http.MethodPost, `{"email":"a@x.com","password":"p"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// Same message as an unknown email, no account-existence leak.
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func refreshRow(token string, exp time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at"}).
		AddRow(1, 1, token, exp)
}

func TestRefresh_RotatesToken(t *testing.T) {
	h, mock := newAuthEnv(t)
	old, err := utils.NewRefreshToken(handlerSecret, 1, time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, user_id, token, expires_at FROM refresh_tokens WHERE token=").
		WithArgs(old.Token).
		WillReturnRows(refreshRow(old.Token, old.Exp))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WithArgs(uint64(1)).
		WillReturnRows(userRow("hash"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token=").
		WithArgs(old.Token).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(uint64(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	rec := doJSON(t, h.Refresh, http.MethodPost, `{"refreshToken":"`+old.Token+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_UnknownToken(t *testing.T) {
	h, mock := newAuthEnv(t)

	mock.ExpectQuery("SELECT id, user_id, token, expires_at FROM refresh_tokens WHERE token=").
		WillReturnError(sql.ErrNoRows)

	rec := doJSON(t, h.Refresh, http.MethodPost, `{"refreshToken":"never-issued"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid refresh token")
}

// A stored expiry in the past wins over everything else: the row is
// removed and the caller gets the dedicated expired message, even though
// the token's signature would still verify.
func TestRefresh_StoredExpiry(t *testing.T) {
	h, mock := newAuthEnv(t)
	old, err := utils.NewRefreshToken(handlerSecret, 1, time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, user_id, token, expires_at FROM refresh_tokens WHERE token=").
		WillReturnRows(refreshRow(old.Token, time.Now().UTC().Add(-time.Minute)))
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token=").
		WithArgs(old.Token).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doJSON(t, h.Refresh, http.MethodPost, `{"refreshToken":"`+old.Token+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Refresh token expired")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_ForeignSignature(t *testing.T) {
	h, mock := newAuthEnv(t)
	forged, err := utils.NewRefreshToken("some-other-secret", 1, time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, user_id, token, expires_at FROM refresh_tokens WHERE token=").
		WillReturnRows(refreshRow(forged.Token, forged.Exp))
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token=").
		WithArgs(forged.Token).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doJSON(t, h.Refresh, http.MethodPost, `{"refreshToken":"`+forged.Token+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid refresh token")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_UserGone(t *testing.T) {
	h, mock := newAuthEnv(t)
	old, err := utils.NewRefreshToken(handlerSecret, 1, time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, user_id, token, expires_at FROM refresh_tokens WHERE token=").
		WillReturnRows(refreshRow(old.Token, old.Exp))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnError(sql.ErrNoRows)

	rec := doJSON(t, h.Refresh, http.MethodPost, `{"refreshToken":"`+old.Token+`"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

// Two refreshes racing on one token: the loser reaches rotation after the
// winner consumed the row, its conditional delete affects nothing, and it
// is turned away with the same response as a fabricated token.
func TestRefresh_LostRotationRace(t *testing.T) {
	h, mock := newAuthEnv(t)
	old, err := utils.NewRefreshToken(handlerSecret, 1, time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, user_id, token, expires_at FROM refresh_tokens WHERE token=").
		WillReturnRows(refreshRow(old.Token, old.Exp))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnRows(userRow("hash"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token=").
		WithArgs(old.Token).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	rec := doJSON(t, h.Refresh, http.MethodPost, `{"refreshToken":"`+old.Token+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid refresh token")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogout(t *testing.T) {
	h, mock := newAuthEnv(t)

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token=").
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doJSON(t, h.Logout, http.MethodPost, `{"refreshToken":"tok"}`, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLogout_MissingToken(t *testing.T) {
	h, _ := newAuthEnv(t)

	rec := doJSON(t, h.Logout, http.MethodPost, `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Full scenario: register, login, fetch the profile with the access
// token.  The profile response carries the email and never a password.
func TestRegisterLoginProfileScenario(t *testing.T) {
	h, mock := newAuthEnv(t)
	hash, err := utils.HashPassword("p", bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))
	rec := doJSON(t, h.Register, http.MethodPost,
		`{"name":"A","email":"a@x.com","password":"p"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email=").
		WillReturnRows(userRow(hash))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))
	rec = doJSON(t, h.Login, http.MethodPost, `{"email":"a@x.com","password":"p"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnRows(userRow(hash))
	profile := middleware.JWTAuth(handlerSecret)(h.Profile)
	rec = doJSON(t, profile, http.MethodGet, "", "Bearer "+pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"a@x.com"`)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfile_UserDeleted(t *testing.T) {
	h, mock := newAuthEnv(t)
	tok, err := utils.NewAccessToken(handlerSecret, 1, "a@x.com", "customer", time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WillReturnError(sql.ErrNoRows)

	profile := middleware.JWTAuth(handlerSecret)(h.Profile)
	rec := doJSON(t, profile, http.MethodGet, "", "Bearer "+tok.Token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}
