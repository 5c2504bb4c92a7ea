package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/services"
)

// LoginRequest accepts a username or an email as login
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,password"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type VerifyRequest struct {
	Token string `json:"token" binding:"required,len=6,numeric"`
}

type ResendVerificationRequest struct {
	Login string `json:"login" binding:"required"`
}

// AuthController serves the public authentication endpoints
type AuthController struct {
	auth         *services.AuthService
	verification *services.VerificationService
}

func NewAuthController(auth *services.AuthService, verification *services.VerificationService) *AuthController {
	return &AuthController{auth: auth, verification: verification}
}

// Login handles POST /api/v1/auth/login
func (ctl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	session, err := ctl.auth.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, session)
}

// Refresh handles POST /api/v1/auth/refresh
func (ctl *AuthController) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	session, err := ctl.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, session)
}

// Register handles POST /api/v1/auth/register - creates an inactive account
// and mails a verification code
func (ctl *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := ctl.auth.Register(c.Request.Context(), services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

// Verify handles POST /api/v1/auth/verify
func (ctl *AuthController) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := ctl.verification.Verify(c.Request.Context(), req.Token); err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"verified": true})
}

// ResendVerification handles POST /api/v1/auth/verify/resend
func (ctl *AuthController) ResendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := ctl.verification.Resend(c.Request.Context(), req.Login); err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusAccepted, gin.H{"sent": true})
}
