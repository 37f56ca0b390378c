package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	domainauth "staybook/internal/domain/auth"
)

const principalKey = "rest.principal"

// requireAuth resolves the bearer token to a user and aborts with 401 when it
// cannot.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		user, err := s.Auth.ResolveToken(c.Request.Context(), domainauth.Token(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(principalKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// principal returns the authenticated user. Only valid behind requireAuth.
func principal(c *gin.Context) *dto.User {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	user, _ := v.(*dto.User)
	return user
}
