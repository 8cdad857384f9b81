package handler

import (
    "context"      // context with cancellation for DB calls
    "errors"       // sentinel comparisons against repository errors
    "fmt"          // avatar URI construction
    "math/rand"    // randomized default avatar
    "net/http"     // HTTP status codes
    "strings"      // input normalization
    "time"         // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/Andressalasf/API-Store/internal/config"     // app configuration
    "github.com/Andressalasf/API-Store/internal/model"      // persisted records
    "github.com/Andressalasf/API-Store/internal/queue"      // broker event payloads
    "github.com/Andressalasf/API-Store/internal/repository" // DB repositories
    "github.com/Andressalasf/API-Store/internal/utils"      // hashing and token issuing
)

// AuthHandler bundles dependencies for auth endpoints.  Publish is the
// optional broker hook invoked after a successful registration; a nil
// value disables event publishing (tests, broker-less deployments).
type AuthHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Tokens  *repository.TokenRepo
	Publish func(ctx context.Context, event queue.UserRegisteredEvent) error
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`   // customer | admin, optional
	Avatar   string `json:"avatar"` // optional, defaulted when empty
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type userPart struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
}
type tokenPairResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a user and returns it without the password hash.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body", err, h.Cfg.Env)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return respondError(c, http.StatusBadRequest, "Name, email and password are required", nil, h.Cfg.Env)
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != model.RoleAdmin && role != model.RoleCustomer {
		role = model.RoleCustomer
	}
	avatar := req.Avatar
	if avatar == "" {
		avatar = fmt.Sprintf("https://api.lorem.space/image/face?w=640&h=480&r=%d", rand.Intn(1000))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return internalError(c, err, h.Cfg.Env)
	}
	uid, err := h.Users.Create(ctx, model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     role,
		Avatar:   avatar,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return respondError(c, http.StatusConflict, "User with this email already exists", nil, h.Cfg.Env)
		}
		return internalError(c, err, h.Cfg.Env)
	}

	// Best effort: a broker outage must never fail a registration.
	if h.Publish != nil {
		_ = h.Publish(ctx, queue.UserRegisteredEvent{
			UserID:       uid,
			Name:         req.Name,
			Email:        req.Email,
			Role:         role,
			RegisteredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user":    userPart{ID: uid, Name: req.Name, Email: req.Email, Role: role, Avatar: avatar},
	})
}

// Login verifies credentials and returns a fresh token pair.  An unknown
// email and a wrong password produce the same response so the endpoint
// does not leak which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body", err, h.Cfg.Env)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return respondError(c, http.StatusBadRequest, "Email and password are required", nil, h.Cfg.Env)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusUnauthorized, "Invalid credentials", nil, h.Cfg.Env)
		}
		return internalError(c, err, h.Cfg.Env)
	}
	if !utils.VerifyPassword(u.Password, req.Password) {
		return respondError(c, http.StatusUnauthorized, "Invalid credentials", nil, h.Cfg.Env)
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTL)
	if err != nil {
		return internalError(c, err, h.Cfg.Env)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTSecret, u.ID, h.Cfg.RefreshTTL)
	if err != nil {
		return internalError(c, err, h.Cfg.Env)
	}
	// Persist the refresh token with its absolute expiry.  Each login adds
	// one row; concurrent sessions from several devices are allowed.
	if err := h.Tokens.Store(ctx, u.ID, refresh.Token, refresh.Exp); err != nil {
		return internalError(c, err, h.Cfg.Env)
	}

	return c.JSON(http.StatusCreated, tokenPairResp{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
	})
}

// Profile returns the authenticated user's record, resolved from the
// subject the JWT middleware stored in the context.
func (h *AuthHandler) Profile(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "Invalid token", nil, h.Cfg.Env)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "User not found", nil, h.Cfg.Env)
		}
		return internalError(c, err, h.Cfg.Env)
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Avatar: u.Avatar})
}

// Refresh exchanges a live refresh token for a new pair.  The old token
// is consumed atomically, so presenting it a second time fails.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return respondError(c, http.StatusBadRequest, "Refresh token is required", nil, h.Cfg.Env)
	}
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// A token the store has never seen (or already consumed) is invalid.
	stored, err := h.Tokens.FindByToken(ctx, raw)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return respondError(c, http.StatusUnauthorized, "Invalid refresh token", nil, h.Cfg.Env)
		}
		return internalError(c, err, h.Cfg.Env)
	}
	// Lazy expiry: the row is removed the moment an expired token is
	// presented, no background sweep needed for correctness.
	if time.Now().UTC().After(stored.ExpiresAt) {
		_ = h.Tokens.DeleteByToken(ctx, raw)
		return respondError(c, http.StatusUnauthorized, "Refresh token expired", nil, h.Cfg.Env)
	}
	// Signature/structure check.  Any issuer failure, expired included,
	// means the stored row is garbage; drop it.
	claims, err := utils.VerifyToken(raw, h.Cfg.JWTSecret)
	if err != nil {
		_ = h.Tokens.DeleteByToken(ctx, raw)
		return respondError(c, http.StatusUnauthorized, "Invalid refresh token", nil, h.Cfg.Env)
	}
	uid, err := claims.UserID()
	if err != nil {
		_ = h.Tokens.DeleteByToken(ctx, raw)
		return respondError(c, http.StatusUnauthorized, "Invalid refresh token", nil, h.Cfg.Env)
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "User not found", nil, h.Cfg.Env)
		}
		return internalError(c, err, h.Cfg.Env)
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTL)
	if err != nil {
		return internalError(c, err, h.Cfg.Env)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTSecret, u.ID, h.Cfg.RefreshTTL)
	if err != nil {
		return internalError(c, err, h.Cfg.Env)
	}
	// Rotation: delete-old/insert-new in one transaction.  When two
	// refresh calls race on the same token, exactly one wins; the loser
	// sees ErrTokenNotFound here.
	if err := h.Tokens.Rotate(ctx, raw, u.ID, refresh.Token, refresh.Exp); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return respondError(c, http.StatusUnauthorized, "Invalid refresh token", nil, h.Cfg.Env)
		}
		return internalError(c, err, h.Cfg.Env)
	}

	return c.JSON(http.StatusOK, tokenPairResp{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
	})
}

// Logout revokes the presented refresh token.  Revocation is single-token
// (other devices stay logged in) and idempotent: deleting a token that is
// already gone still succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return respondError(c, http.StatusBadRequest, "Refresh token is required", nil, h.Cfg.Env)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.DeleteByToken(ctx, strings.TrimSpace(req.RefreshToken)); err != nil {
		return internalError(c, err, h.Cfg.Env)
	}
	return c.NoContent(http.StatusNoContent)
}
