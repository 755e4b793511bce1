package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login exchanges the provider password for a bearer token used by the
// service management API. A bcrypt hash takes precedence when configured.
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid payload")
		return
	}

	if !a.passwordMatches(req.Password) {
		respondError(c, http.StatusUnauthorized, "unauthorized", "wrong password")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "provider",
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(a.JWTSecret)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "could not issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}

func (a *API) passwordMatches(password string) bool {
	if a.ProviderPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.ProviderPasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(a.ProviderPassword)) == 1
}
