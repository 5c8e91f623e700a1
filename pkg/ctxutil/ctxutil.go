package ctxutil

import "context"

type ctxKey string

const (
	userTokenKey ctxKey = "user_token"
	requestIDKey ctxKey = "request_id"
)

// WithUserToken stores the Mirror user token in the context.
func WithUserToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, userTokenKey, token)
}

// UserTokenFromCtx extracts the user token from the context.
// Returns an empty string and false if the value is missing or empty.
func UserTokenFromCtx(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(userTokenKey).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
