package middleware

import (
	"cmp"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/jsamuelsen11/onion/internal/platform/logging"
)

const redactedValue = "[REDACTED]"

// RedactHeaders converts headers into slog attributes sorted by name.
// Sensitive header values become "[REDACTED]"; multi-value headers are
// joined with a comma.
func RedactHeaders(headers http.Header) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(headers))
	for key, vals := range headers {
		if logging.SensitiveHeaders[strings.ToLower(key)] {
			attrs = append(attrs, slog.String(key, redactedValue))
			continue
		}
		attrs = append(attrs, slog.String(key, strings.Join(vals, ",")))
	}
	slices.SortFunc(attrs, func(a, b slog.Attr) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return attrs
}
