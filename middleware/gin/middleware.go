package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	metaset "github.com/reoring/metaset"
	"github.com/reoring/metaset/middleware"
)

// ValidateBody decodes the request body as a record document, validates every
// entry against s and stores the entries in the request context on success.
// Validation failures abort with 400 and a violations payload. A zero-valued
// opt selects middleware.DefaultBodyOpt.
func ValidateBody(s *metaset.Schema, opt middleware.BodyOpt) gin.HandlerFunc {
	if opt == (middleware.BodyOpt{}) {
		opt = middleware.DefaultBodyOpt()
	}
	return func(c *gin.Context) {
		entries, payload := middleware.CheckBody(s, c.Request.Body, opt)
		if payload != nil {
			c.JSON(http.StatusBadRequest, payload)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithEntries(c.Request.Context(), entries))
		c.Next()
	}
}

// Entries fetches the validated entries from gin.Context.
func Entries(c *gin.Context) ([]metaset.Entry, bool) {
	return middleware.EntriesFromContext(c.Request.Context())
}
