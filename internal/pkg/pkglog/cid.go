package pkglog

import "context"

type correlationIDKey struct{}

// GetCorrelationID returns the request correlation ID carried by ctx, or ""
// when the request did not pass through the correlation middleware.
func GetCorrelationID(ctx context.Context) string {
	cid, _ := ctx.Value(correlationIDKey{}).(string)
	return cid
}

// SetCorrelationID returns a copy of ctx carrying cid. Every record logged
// with that context gets it as "_cID".
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, cid)
}
