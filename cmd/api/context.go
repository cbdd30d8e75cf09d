package main

import (
	"context"
	"net/http"

	"github.com/aoideee/library-catalog/internal/data"
)

type contextKey string

const userContextKey = contextKey("user")

// contextSetUser returns a copy of r carrying user.
func (app *applicationDependencies) contextSetUser(r *http.Request, user *data.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// contextGetUser returns the user stored by authenticate, or the anonymous user
// when the request never went through it.
func (app *applicationDependencies) contextGetUser(r *http.Request) *data.User {
	user, ok := r.Context().Value(userContextKey).(*data.User)
	if !ok || user == nil {
		return data.AnonymousUser
	}
	return user
}
