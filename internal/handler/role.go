package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac-service/internal/model"
	"github.com/iliyamo/auth-rbac-service/internal/repository"
	"github.com/iliyamo/auth-rbac-service/internal/service"
)

// RoleHandler exposes administrative role management endpoints.
type RoleHandler struct {
	Roles *service.RoleService
}

// NewRoleHandler returns a RoleHandler over the given service.
func NewRoleHandler(r *service.RoleService) *RoleHandler {
	return &RoleHandler{Roles: r}
}

type roleReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toRoleResp(r model.Role) roleResp {
	return roleResp{ID: r.ID, Name: r.Name, Description: r.Description}
}

// List returns all roles.
func (h *RoleHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	roles, err := h.Roles.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list roles failed"})
	}
	out := make([]roleResp, len(roles))
	for i, r := range roles {
		out[i] = toRoleResp(r)
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one role by id.
func (h *RoleHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Roles.Get(ctx, id)
	if err != nil {
		return roleErr(c, err, "get role failed")
	}
	return c.JSON(http.StatusOK, toRoleResp(r))
}

// Create adds a new role.
func (h *RoleHandler) Create(c echo.Context) error {
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Roles.Create(ctx, service.RoleInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return roleErr(c, err, "create role failed")
	}
	return c.JSON(http.StatusCreated, toRoleResp(r))
}

// Update rewrites a role's name and description.
func (h *RoleHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Roles.Update(ctx, id, service.RoleInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return roleErr(c, err, "update role failed")
	}
	return c.JSON(http.StatusOK, toRoleResp(r))
}

// Delete removes a role. A role still held by users is not deleted.
func (h *RoleHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Roles.Delete(ctx, id); err != nil {
		return roleErr(c, err, "delete role failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// roleErr maps service and repository errors onto HTTP responses.
func roleErr(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
	case errors.Is(err, repository.ErrRoleNameExists),
		errors.Is(err, repository.ErrRoleDescriptionExists),
		errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrRoleInUse):
		return c.JSON(http.StatusConflict, echo.Map{"error": "role still assigned to users"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}
