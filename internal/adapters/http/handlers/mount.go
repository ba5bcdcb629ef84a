package handlers

import (
	appctx "github.com/jsamuelsen11/onion/internal/app/context"
)

// Mount runs h only for exchanges whose path equals path. Every other
// exchange skips h and continues down the chain.
func Mount(path string, h appctx.Handler) appctx.Handler {
	return func(c *appctx.Context, next appctx.Next) error {
		if c.Path() != path {
			return next()
		}
		return h(c, next)
	}
}
