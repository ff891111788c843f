package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/propmapper"
	"github.com/reoring/propmapper/middleware"
	"github.com/reoring/propmapper/source"
)

// Decode creates an object of type t from the request body (f, or
// middleware.DefaultFormat when nil), stores it in the request context and
// aborts with 400 and the issues payload when decoding fails.
func Decode(m *propmapper.Mapper, t propmapper.TypeID, f source.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		obj, err := middleware.DecodeRequest(c.Request, m, t, f)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorBody(err))
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithObject(c.Request.Context(), obj))
		c.Next()
	}
}

// Object fetches the decoded object as *T from gin.Context.
func Object[T any](c *gin.Context) (*T, bool) {
	return middleware.ObjectAs[T](c.Request.Context())
}
