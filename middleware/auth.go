package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-blog-backend/models"
	"github.com/vnkhanh/e-blog-backend/utils"
)

const (
	ctxUser   = "user"
	ctxUserID = "user_id"
	ctxToken  = "token"
	ctxClaims = "claims"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *utils.Claims, error)
}

// RequireAuth accepts only "Authorization: Bearer <token>". The token is checked
// against the logout blacklist before its signature, then the account must exist
// and be active.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := utils.BearerToken(c)
		user, claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.AbortWithAuthError(c, err)
			return
		}

		c.Set(ctxUser, user)
		c.Set(ctxUserID, user.ID)
		c.Set(ctxToken, token)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUser); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentToken returns the raw bearer token and its claims.
func CurrentToken(c *gin.Context) (string, *utils.Claims) {
	token := c.GetString(ctxToken)
	var claims *utils.Claims
	if v, ok := c.Get(ctxClaims); ok {
		claims, _ = v.(*utils.Claims)
	}
	return token, claims
}
