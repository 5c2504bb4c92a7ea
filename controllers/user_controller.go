package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/services"
)

// CreateUserRequest is the admin form for creating an account directly
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,password"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Role      string `json:"role" binding:"omitempty,oneof=USER ADMIN"`
	IsActive  bool   `json:"is_active"`
}

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=50"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=50"`
	Email     *string `json:"email" binding:"omitempty,email"`
}

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// ListUsers handles GET /api/v1/users?q= (admin)
func (ctl *UserController) ListUsers(c *gin.Context) {
	users, err := ctl.users.List(c.Request.Context(), services.UserFilter{UsernameOrEmail: c.Query("q")})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, users)
}

// GetMyProfile handles GET /api/v1/users/me
func (ctl *UserController) GetMyProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	user, err := ctl.users.Get(c.Request.Context(), p.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// GetUser handles GET /api/v1/users/:id - owner or admin
func (ctl *UserController) GetUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !p.CanActFor(id) {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You can only view your own profile")
		return
	}

	user, err := ctl.users.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// LookupUser handles GET /api/v1/users/lookup/:login (admin)
func (ctl *UserController) LookupUser(c *gin.Context) {
	user, err := ctl.users.GetByUsernameOrEmail(c.Request.Context(), c.Param("login"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// CreateUser handles POST /api/v1/users (admin)
func (ctl *UserController) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := ctl.users.Create(c.Request.Context(), services.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		IsActive:  req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

// UpdateUser handles PATCH /api/v1/users/:id
func (ctl *UserController) UpdateUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := ctl.users.Update(c.Request.Context(), p, id, services.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// ActivateUser handles POST /api/v1/users/:id/activate (admin)
func (ctl *UserController) ActivateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := ctl.users.Activate(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	user, err := ctl.users.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/users/:id (admin)
func (ctl *UserController) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := ctl.users.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
