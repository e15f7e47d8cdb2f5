package identity

import "context"

type contextKey string

const nameKey = contextKey("identityName")

// WithName makes name the author of everything created with ctx.
func WithName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, nameKey, name)
}

func NameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(nameKey).(string)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
