package auth

import "context"

// Identity is the caller as seen by the data layer and the booking workflow.
// The zero value is an anonymous caller.
type Identity struct {
	UserID    string
	FirstName string
	LastName  string
}

func (id Identity) Authenticated() bool { return id.UserID != "" }

func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, FirstName: c.FirstName, LastName: c.LastName}
}

type ctxKey struct{}

// WithIdentity attaches id to ctx. Only the HTTP middleware should call this;
// everything below the handlers takes Identity as a parameter.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
