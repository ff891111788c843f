package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reoring/propmapper"
	"github.com/reoring/propmapper/middleware"
	"github.com/reoring/propmapper/source"
)

// Decode creates an object of type t from the request body, stores it in the
// request context on success, or answers 400 with the issues payload.
func Decode(m *propmapper.Mapper, t propmapper.TypeID, f source.Format) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			obj, err := middleware.DecodeRequest(c.Request(), m, t, f)
			if err != nil {
				return c.JSON(http.StatusBadRequest, middleware.ErrorBody(err))
			}
			ctx := middleware.ContextWithObject(c.Request().Context(), obj)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// Object fetches the decoded object as *T from echo.Context.
func Object[T any](c echo.Context) (*T, bool) {
	return middleware.ObjectAs[T](c.Request().Context())
}
