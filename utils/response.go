package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type authFailure struct {
	code    string
	title   string
	message string
}

var authFailures = []struct {
	err error
	authFailure
}{
	{ErrAuthRequired, authFailure{"AUTH_REQUIRED", "Authentication required", "No token provided. Please login"}},
	{ErrTokenRevoked, authFailure{"TOKEN_REVOKED", "Token revoked", "This token has been logged out. Please login again"}},
	{ErrTokenExpired, authFailure{"TOKEN_EXPIRED", "Token expired", "Your session has expired. Please login again"}},
	{ErrInvalidToken, authFailure{"INVALID_TOKEN", "Invalid token", "Your session is invalid. Please login again"}},
	{ErrAccountNotFound, authFailure{"ACCOUNT_NOT_FOUND", "Account not found", "Your account no longer exists."}},
	{ErrAccountDisabled, authFailure{"ACCOUNT_DELETED", "Account disabled", "Your account has been deactivated by an administrator."}},
}

// AbortWithAuthError writes a single 401 JSON body describing err and aborts the chain.
// Errors outside the auth taxonomy become a 500.
func AbortWithAuthError(c *gin.Context, err error) {
	for _, f := range authFailures {
		if errors.Is(err, f.err) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    f.code,
				"error":   f.title,
				"message": f.message,
			})
			return
		}
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   "Authentication failed",
		"message": "Unable to verify authentication",
	})
}
