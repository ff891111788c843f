// Package middleware decodes HTTP request bodies through a Mapper and
// carries the resulting object on the request context.
package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/propmapper"
	"github.com/reoring/propmapper/source"
)

// MaxBodyBytes caps the request body read by DecodeRequest.
const MaxBodyBytes = 1 << 20

type ctxKeyObject struct{}

// ContextWithObject attaches a decoded object to the context.
func ContextWithObject(ctx context.Context, obj any) context.Context {
	return context.WithValue(ctx, ctxKeyObject{}, obj)
}

// ObjectFromContext retrieves the object stored by ContextWithObject.
func ObjectFromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(ctxKeyObject{})
	return v, v != nil
}

// ObjectAs retrieves the stored object as *T.
func ObjectAs[T any](ctx context.Context) (*T, bool) {
	v, ok := ctx.Value(ctxKeyObject{}).(*T)
	return v, ok
}

// DefaultFormat is the body format used when none is given: JSON with
// duplicate keys rejected.
func DefaultFormat() source.Format { return source.JSON{RejectDuplicates: true} }

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(iss propmapper.Issues) map[string]any {
	return map[string]any{"issues": iss}
}

// DecodeRequest reads r's body with f (DefaultFormat when nil) and creates
// an object of type t. Validation failures come back as propmapper.Issues.
func DecodeRequest(r *http.Request, m *propmapper.Mapper, t propmapper.TypeID, f source.Format) (any, error) {
	if f == nil {
		f = DefaultFormat()
	}
	if r.Body == nil {
		return nil, fmt.Errorf("middleware: empty request body")
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBodyBytes {
		return nil, fmt.Errorf("middleware: request body exceeds %d bytes", MaxBodyBytes)
	}
	dict, err := f.Decode(data)
	if err != nil {
		return nil, err
	}
	return m.CreateObject(t, dict)
}

// Decode returns net/http middleware that decodes the body into type t and
// stores the object on the request context. Failures answer 400 with the
// issues (or the error) as JSON.
func Decode(m *propmapper.Mapper, t propmapper.TypeID, f source.Format) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			obj, err := DecodeRequest(r, m, t, f)
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithObject(r.Context(), obj)))
		})
	}
}

// ErrorBody is the JSON response body for a failed decode.
func ErrorBody(err error) any {
	if iss, ok := propmapper.AsIssues(err); ok {
		return ErrorPayload(iss)
	}
	return map[string]any{"error": err.Error()}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = gojson.NewEncoder(w).Encode(ErrorBody(err))
}
