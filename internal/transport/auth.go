package transport

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rpggio/cannonplot/pkg/response"
)

// BearerAuth enforces a static bearer token. An empty token disables the
// check.
func BearerAuth(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if err := checkBearer(c.GetHeader("Authorization"), token); err != nil {
			response.Unauthorized(c, err.Error())
			return
		}
		c.Next()
	}
}

func checkBearer(header, token string) error {
	got, ok := strings.CutPrefix(header, "Bearer ")
	got = strings.TrimSpace(got)
	if !ok || got == "" {
		return errors.New("missing bearer token")
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
		return errors.New("invalid bearer token")
	}
	return nil
}
