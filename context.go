package sessauth

import "context"

type localeContextKey struct{}

// WithLocale attaches a message locale ("en", "ru", "uz") to ctx. Operations
// that surface user-facing error text pick the fallback message in this
// locale; without it the configured default locale applies.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeContextKey{}, locale)
}

func localeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	locale, _ := ctx.Value(localeContextKey{}).(string)
	return locale
}
