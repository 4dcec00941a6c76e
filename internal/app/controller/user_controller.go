package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/internal/app/service"
	apperrors "github.com/storerate/storerate-backend/internal/errors"
	"github.com/storerate/storerate-backend/internal/middleware"
	"github.com/storerate/storerate-backend/internal/query"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{userService: userService}
}

// ListUsers returns users matching the filters
// GET /api/users?name=&email=&address=&role=&sortBy=&sortOrder=
func (ctrl *UserController) ListUsers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	users, err := ctrl.userService.ListUsers(query.ParamsFromQuery(c.Request.URL.Query()))
	if err != nil {
		respondUnexpected(c, log, "Failed to list users", err, nil)
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUser returns one user
// GET /api/users/:id
func (ctrl *UserController) GetUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := ctrl.userService.GetUser(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.UserNotFound, "User not found")
			return
		}
		respondUnexpected(c, log, "Failed to get user", err, map[string]interface{}{
			"user_id": id,
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// CreateUser creates an account with any role
// POST /api/users
func (ctrl *UserController) CreateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.CreateUserInput
	if !bindJSON(c, log, &req) {
		return
	}

	user, err := ctrl.userService.CreateUser(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "User with this email already exists")
		case errors.Is(err, service.ErrInvalidRole):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid role")
		default:
			respondUnexpected(c, log, "Failed to create user", err, nil)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"userId":  user.ID,
	})
}

// DeleteUser removes a user
// DELETE /api/users/:id
func (ctrl *UserController) DeleteUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.userService.DeleteUser(id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.UserNotFound, "User not found")
			return
		}
		respondUnexpected(c, log, "Failed to delete user", err, map[string]interface{}{
			"user_id": id,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}
