package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

type contextKey int

const requestIDKey contextKey = iota

// AddRequestID is a handler that adds a random request id to the request context
func AddRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 12)
		rand.Read(buf)

		ctx := context.WithValue(r.Context(), requestIDKey, hex.EncodeToString(buf))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetReqID returns the request id from the request context, if set
func GetReqID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}

	return ""
}
