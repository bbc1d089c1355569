package middleware

import (
	"crypto/subtle"
	"net/http"

	"clearing_proposals/pkg"

	"github.com/gin-gonic/gin"
)

const HeaderAdminKey = "X-Admin-Key"

var errUnauthorized = pkg.NewDomainErrorSimple("UNAUTHORIZED", "Missing or invalid admin key", http.StatusUnauthorized)

// AdminKey guards back-office routes with a static shared key. An empty key
// rejects every request.
func AdminKey(key string) gin.HandlerFunc {
	expected := []byte(key)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(HeaderAdminKey))
		if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
			c.AbortWithStatusJSON(errUnauthorized.HTTPStatus, errUnauthorized.ToHTTPError())
			return
		}
		c.Set("admin", true)
		c.Next()
	}
}
