package main

import (
	"context"
	"net/http"
)

// user is the identity forwarded by the club's auth proxy. The core never
// reads identity from ambient state; it flows from here into every service
// call as an explicit parameter.
type user struct {
	ID       string
	Username string
	Email    string
}

var anonymousUser = user{}

func (u *user) isAnonymous() bool {
	return u.ID == ""
}

type contextKey string

const userContextKey = contextKey("user")

func (app *application) createUserContext(r *http.Request, u *user) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, u)
	return r.WithContext(ctx)
}

func (app *application) getUserContext(r *http.Request) *user {
	u, ok := r.Context().Value(userContextKey).(*user)
	if !ok {
		return &anonymousUser
	}
	return u
}
