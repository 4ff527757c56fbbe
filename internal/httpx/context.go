package httpx

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	rolesKey     contextKey = "roles"
	requestIDKey contextKey = "requestID"
)

// UserIDFrom retrieves the user ID from the request context.
func UserIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// RolesFrom retrieves the caller's roles from the request context.
func RolesFrom(r *http.Request) []string {
	if v, ok := r.Context().Value(rolesKey).([]string); ok {
		return v
	}
	return nil
}

// ContextWithUser returns a new context with the user ID and roles.
func ContextWithUser(ctx context.Context, userID string, roles []string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, rolesKey, roles)
}

// RequestIDFrom retrieves the request ID set by RequestIDMiddleware.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// requestInfo is filled in by inner middleware for the access log.
type requestInfo struct {
	userID string
}

const requestInfoKey contextKey = "requestInfo"

func contextWithRequestInfo(ctx context.Context, info *requestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey, info)
}

func recordUserID(r *http.Request, userID string) {
	if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
		info.userID = userID
	}
}
