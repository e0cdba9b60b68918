package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	metaset "github.com/reoring/metaset"
	"github.com/reoring/metaset/middleware"
)

// ValidateBody decodes the request body as a record document, validates every
// entry against s and stores the entries in the request context on success.
// Validation failures short-circuit with 400 and a violations payload. A
// zero-valued opt selects middleware.DefaultBodyOpt.
func ValidateBody(s *metaset.Schema, opt middleware.BodyOpt) echo.MiddlewareFunc {
	if opt == (middleware.BodyOpt{}) {
		opt = middleware.DefaultBodyOpt()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			entries, payload := middleware.CheckBody(s, c.Request().Body, opt)
			if payload != nil {
				return c.JSON(http.StatusBadRequest, payload)
			}
			ctx := middleware.ContextWithEntries(c.Request().Context(), entries)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// Entries fetches the validated entries from echo.Context.
func Entries(c echo.Context) ([]metaset.Entry, bool) {
	return middleware.EntriesFromContext(c.Request().Context())
}
