package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/api/metrics"
	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// UserHandler serves the user-administration routes. Errors are returned to
// the central HTTP error handler.
type UserHandler struct {
	writer ports.UserWriter
	reader ports.UserReader
}

func NewUserHandler(writer ports.UserWriter, reader ports.UserReader) *UserHandler {
	return &UserHandler{writer: writer, reader: reader}
}

// List handles GET /v1/users.
//
// @Summary      List users
// @Description  Every user with its roles, a display string of the roles and the row actions the UI may offer.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Security     ApiTokenAuth
// @Success      200  {object}  userListResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	started := time.Now()
	items, err := h.reader.ListUsers(c.Request().Context())
	metrics.ObserveOperation("list", resultOf(err), started)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserListResponse(items))
}

// Get handles GET /v1/users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Security     ApiTokenAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.resolve(c, "get")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Create handles POST /v1/users.
//
// @Summary      Create a user
// @Description  Hashes the password, stores the user and assigns its roles in one transaction.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Security     ApiTokenAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.UserOperationsTotal.WithLabelValues("create", "invalid").Inc()
		return err
	}

	started := time.Now()
	user, err := h.writer.CreateUser(c.Request().Context(), toCreateInput(req))
	metrics.ObserveOperation("create", resultOf(err), started)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Update handles PUT /v1/users/:id.
//
// @Summary      Update a user
// @Description  An empty password keeps the current one. The role set is replaced by the given roles.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Security     ApiTokenAuth
// @Param        id    path      int                true  "User id"
// @Param        body  body      updateUserRequest  true  "User details"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	user, err := h.resolve(c, "update")
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.UserOperationsTotal.WithLabelValues("update", "invalid").Inc()
		return err
	}

	started := time.Now()
	updated, err := h.writer.UpdateUser(c.Request().Context(), user, toUpdateInput(req))
	metrics.ObserveOperation("update", resultOf(err), started)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUserResponse(updated))
}

// Delete handles DELETE /v1/users/:id.
//
// @Summary      Delete a user
// @Description  Hard delete. Reports deleted=false when the user vanished between lookup and delete.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Security     ApiTokenAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  deleteUserResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	user, err := h.resolve(c, "delete")
	if err != nil {
		return err
	}

	started := time.Now()
	err = h.writer.DeleteUser(c.Request().Context(), user)
	metrics.ObserveOperation("delete", resultOf(err), started)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusOK, deleteUserResponse{Deleted: false})
		}
		return err
	}

	return c.JSON(http.StatusOK, deleteUserResponse{Deleted: true})
}

// RotateToken handles POST /v1/users/:id/api-token.
//
// @Summary      Rotate a user's API token
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Security     ApiTokenAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  rotateTokenResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/users/{id}/api-token [post]
func (h *UserHandler) RotateToken(c echo.Context) error {
	user, err := h.resolve(c, "rotate_token")
	if err != nil {
		return err
	}

	started := time.Now()
	token, err := h.writer.RotateAPIKey(c.Request().Context(), user)
	metrics.ObserveOperation("rotate_token", resultOf(err), started)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rotateTokenResponse{APIToken: token})
}

// Roles handles GET /v1/roles.
//
// @Summary      List assignable roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Security     ApiTokenAuth
// @Success      200  {object}  rolesResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/roles [get]
func (h *UserHandler) Roles(c echo.Context) error {
	names, err := h.reader.ListRoles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rolesResponse{Data: names})
}

// resolve loads the user named by the :id parameter.
func (h *UserHandler) resolve(c echo.Context, operation string) (*domain.User, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}
	user, err := h.reader.GetUser(c.Request().Context(), id)
	if err != nil {
		metrics.UserOperationsTotal.WithLabelValues(operation, resultOf(err)).Inc()
		return nil, err
	}
	return user, nil
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case domain.FieldOf(err) != "":
		return "invalid"
	default:
		return "error"
	}
}
