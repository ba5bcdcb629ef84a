package app

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	appctx "github.com/jsamuelsen11/onion/internal/app/context"
)

// payload is a response body rendered and ready to write.
type payload struct {
	skip        bool
	contentType string
	data        []byte
	stream      io.Reader
}

// prepare renders the body the chain left on the context. It runs before
// the exchange settles so that an unencodable body fails the exchange
// instead of producing a half-written response.
func (a *App) prepare(c *appctx.Context, rw *responseWriter) (payload, error) {
	res := c.Response()
	if !res.BodySet() && rw.HeaderWritten() {
		return payload{skip: true}, nil
	}

	body := res.Body()
	if !res.BodySet() {
		body = a.defaultBody
	}
	return render(body)
}

func render(body any) (payload, error) {
	switch b := body.(type) {
	case string:
		return payload{contentType: "text/plain; charset=utf-8", data: []byte(b)}, nil
	case []byte:
		return payload{contentType: "application/octet-stream", data: b}, nil
	case io.Reader:
		return payload{contentType: "application/octet-stream", stream: b}, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return payload{}, fmt.Errorf("encoding %T body: %w", body, err)
		}
		return payload{contentType: "application/json", data: data}, nil
	}
}

// write sends the status line, headers and body. A content type already
// chosen by a handler is kept.
func write(c *appctx.Context, rw *responseWriter, p payload) error {
	if p.stream != nil {
		if closer, ok := p.stream.(io.Closer); ok {
			defer closer.Close()
		}
	}
	if p.skip {
		return nil
	}

	status := c.Status()
	h := rw.Header()

	if bodyless(status) {
		h.Del("Content-Type")
		h.Del("Content-Length")
		rw.WriteHeader(status)
		return nil
	}

	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", p.contentType)
	}
	if p.stream == nil && !rw.HeaderWritten() {
		h.Set("Content-Length", strconv.Itoa(len(p.data)))
	}
	rw.WriteHeader(status)

	if c.Method() == http.MethodHead {
		return nil
	}
	if p.stream != nil {
		_, err := io.Copy(rw, p.stream)
		return err
	}
	if len(p.data) == 0 {
		return nil
	}
	_, err := rw.Write(p.data)
	return err
}

// bodyless reports statuses that must not carry a body.
func bodyless(status int) bool {
	return status < http.StatusOK ||
		status == http.StatusNoContent ||
		status == http.StatusResetContent ||
		status == http.StatusNotModified
}
