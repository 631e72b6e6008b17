package main

import (
	"context"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// browserStorage keeps local state in window.localStorage so the token
// survives page reloads.
type browserStorage struct {
	prefix string
}

func (s browserStorage) Get(_ context.Context, key string) (string, bool, error) {
	v := app.Window().Get("localStorage").Call("getItem", s.prefix+key)
	if v.IsNull() || v.IsUndefined() {
		return "", false, nil
	}
	return v.String(), true, nil
}

func (s browserStorage) Set(_ context.Context, key, value string) error {
	app.Window().Get("localStorage").Call("setItem", s.prefix+key, value)
	return nil
}

func (s browserStorage) Delete(_ context.Context, key string) error {
	app.Window().Get("localStorage").Call("removeItem", s.prefix+key)
	return nil
}
