package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Andressalasf/API-Store/internal/config"
	"github.com/Andressalasf/API-Store/internal/model"
	"github.com/Andressalasf/API-Store/internal/repository"
)

// UserHandler serves the admin user-management endpoints.  The routes are
// registered behind JWTAuth plus RequireRole("admin").
type UserHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Tokens: t}
}

type userUpdateReq struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Role   *string `json:"role"`
	Avatar *string `json:"avatar"`
}

// List returns users ordered by id, paginated, without password hashes.
func (h *UserHandler) List(c echo.Context) error {
	limit, offset := limitOffset(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, limit, offset)
	if err != nil {
		return internalError(c, err, h.Cfg.Env)
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Avatar: u.Avatar})
	}
	return c.JSON(http.StatusOK, out)
}

// Update applies a partial update; absent fields keep their value.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid user id", nil, h.Cfg.Env)
	}
	var req userUpdateReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid request body", err, h.Cfg.Env)
	}
	if req.Role != nil && *req.Role != model.RoleCustomer && *req.Role != model.RoleAdmin {
		return respondError(c, http.StatusBadRequest, "Role must be customer or admin", nil, h.Cfg.Env)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "User not found", nil, h.Cfg.Env)
		}
		return internalError(c, err, h.Cfg.Env)
	}

	u, err := h.Users.Update(ctx, id, repository.UserUpdate{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Avatar: req.Avatar,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return respondError(c, http.StatusConflict, "User with this email already exists", nil, h.Cfg.Env)
		}
		return internalError(c, err, h.Cfg.Env)
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Avatar: u.Avatar})
}

// Delete removes a user together with their refresh tokens, so deleting
// an account also ends its open sessions.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, http.StatusBadRequest, "Invalid user id", nil, h.Cfg.Env)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Tokens first: the foreign key on refresh_tokens.user_id requires
	// it, and it guarantees no session rows outlive the account.
	if err := h.Tokens.DeleteByUser(ctx, id); err != nil {
		return internalError(c, err, h.Cfg.Env)
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "User not found", nil, h.Cfg.Env)
		}
		return internalError(c, err, h.Cfg.Env)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully", "id": id})
}
