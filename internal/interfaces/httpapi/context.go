package httpapi

import "context"

type contextKey string

const cronCallerContextKey contextKey = "cron_caller"

// Cron callers as recorded by RequireCronAuth.
const (
	cronCallerBypass = "bypass"
	cronCallerMarker = "platform-marker"
	cronCallerSecret = "bearer-secret"
)

func withCronCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, cronCallerContextKey, caller)
}

func cronCallerFromContext(ctx context.Context) (string, bool) {
	caller, ok := ctx.Value(cronCallerContextKey).(string)
	return caller, ok
}
