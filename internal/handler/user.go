package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac-service/internal/model"
	"github.com/iliyamo/auth-rbac-service/internal/queue"
	"github.com/iliyamo/auth-rbac-service/internal/repository"
	"github.com/iliyamo/auth-rbac-service/internal/service"
)

// UserHandler exposes administrative user management endpoints.
type UserHandler struct {
	Users *service.UserService
}

// NewUserHandler returns a UserHandler over the given service.
func NewUserHandler(u *service.UserService) *UserHandler {
	return &UserHandler{Users: u}
}

// ----- DTOs -----

type userReq struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	RoleIDs  []uint64 `json:"role_ids"`
}

type setRolesReq struct {
	RoleIDs []uint64 `json:"role_ids"`
}

type roleResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type userResp struct {
	ID        uint64     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Roles     []roleResp `json:"roles"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// toUserResp converts a model.User to its response shape. The
// password hash never leaves the handler layer.
func toUserResp(u model.User) userResp {
	roles := make([]roleResp, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = roleResp{ID: r.ID, Name: r.Name, Description: r.Description}
	}
	return userResp{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// List returns all users with their role sets.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}
	out := make([]userResp, len(users))
	for i, u := range users {
		out[i] = toUserResp(u)
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one user by id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Get(ctx, id)
	if err != nil {
		return userErr(c, err, "get user failed")
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Create registers a new user with an optional initial role set.
func (h *UserHandler) Create(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, service.UserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		RoleIDs:  req.RoleIDs,
	})
	if err != nil {
		return userErr(c, err, "create user failed")
	}

	_ = queue.PublishAuthEvent(ctx, queue.AuthEvent{
		Type:       queue.EventUserCreated,
		UserID:     u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Roles:      u.RoleNames(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, toUserResp(u))
}

// Update rewrites a user's profile and role set.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Update(ctx, id, service.UserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		RoleIDs:  req.RoleIDs,
	})
	if err != nil {
		return userErr(c, err, "update user failed")
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// SetRoles replaces the user's role set with exactly the given ids.
func (h *UserHandler) SetRoles(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req setRolesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.SetRoles(ctx, id, req.RoleIDs); err != nil {
		return userErr(c, err, "set roles failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a user and its role associations.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		return userErr(c, err, "delete user failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// userErr maps service and repository errors onto HTTP responses.
// Internal error details are logged upstream, never returned to the
// client.
func userErr(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, service.ErrUsernameRequired),
		errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrInvalidEmail):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrUsernameExists),
		errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// reqCtx bounds database work for a request to five seconds.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
