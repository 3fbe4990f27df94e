package controllers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-listing-dashboard/config"
	"github.com/yeremiapane/food-listing-dashboard/utils"
)

type AuthController struct {
	Tokens *utils.TokenManager
	cfg    config.AuthConfig
}

// NewAuthController returns a controller whose Login refuses every attempt
// when tokens is nil.
func NewAuthController(tokens *utils.TokenManager, cfg config.AuthConfig) *AuthController {
	return &AuthController{Tokens: tokens, cfg: cfg}
}

// Login exchanges the operator credentials for a bearer token.
func (ac *AuthController) Login(c *gin.Context) {
	if ac.Tokens == nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("operator login is disabled"))
		return
	}

	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(ac.cfg.Username)) == 1
	passOK := utils.CheckPassword(ac.cfg.Password, input.Password)
	if !userOK || !passOK {
		utils.ErrorLogger.Warnf("failed login for %q from %s", input.Username, c.ClientIP())
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	token, err := ac.Tokens.GenerateToken(input.Username, utils.RoleOperator)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Operator logged in: %s", input.Username)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":      token,
		"token_type": "Bearer",
	})
}

// Logout revokes the token the request was authenticated with.
func (ac *AuthController) Logout(c *gin.Context) {
	token := c.GetString("token")
	if ac.Tokens == nil || token == "" {
		utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
		return
	}

	until, ok := c.Get("token_expiry")
	expiry, isTime := until.(time.Time)
	if !ok || !isTime {
		expiry = time.Now().Add(24 * time.Hour)
	}
	ac.Tokens.Blacklist(token, expiry)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}
