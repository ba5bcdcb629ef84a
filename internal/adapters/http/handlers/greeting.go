package handlers

import (
	appctx "github.com/jsamuelsen11/onion/internal/app/context"
)

// Greeting returns a terminal handler that answers every exchange with body
// as plain text. The content type is set through the raw response writer,
// which is how handlers reach headers the context does not forward.
func Greeting(body string) appctx.Handler {
	return func(c *appctx.Context, _ appctx.Next) error {
		c.Res().Header().Set("Content-Type", "text/plain; charset=utf-8")
		c.SetBody(body)
		return nil
	}
}
