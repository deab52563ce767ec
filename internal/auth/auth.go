package auth

import (
	"context"
)

// User is the caller identity attached to each authenticated request.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ctxKey string

const userContextKey ctxKey = "user"

func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}
