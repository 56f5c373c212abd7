package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/e-blog-backend/middleware"
	"github.com/vnkhanh/e-blog-backend/services"
	"github.com/vnkhanh/e-blog-backend/utils"
)

// ====== INPUT STRUCTS ======
type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6"`
	RealName string `json:"real_name" binding:"max=150"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// ====== HANDLERS ======
func (h *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), input.Username, input.Password, input.RealName)
	if errors.Is(err, services.ErrUsernameTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("username", input.Username).Msg("register")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to create account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created",
		"user":    user,
	})
}

func (h *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Please check your input",
			"message": "Username and password are required",
		})
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), input.Username, input.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Invalid username or password",
			"message": "Please check your credentials and try again",
		})
		return
	case errors.Is(err, utils.ErrAccountDisabled):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Account inactive",
			"message": "User account is inactive. Please contact support.",
		})
		return
	case err != nil:
		log.Error().Err(err).Str("username", input.Username).Msg("login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to process login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome back, " + user.Username + "!",
		"token":   token,
		"user":    user,
	})
}

// Logout revokes the bearer token of the request until it would have expired.
func (h *AuthController) Logout(c *gin.Context) {
	token, claims := middleware.CurrentToken(c)
	h.auth.Logout(token, claims)
	c.Status(http.StatusNoContent)
}

func (h *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}
