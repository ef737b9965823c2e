package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
)

const (
	filtered = "[FILTERED]"

	// maxLoggedBody caps how much of a request or response body is kept for the log line.
	maxLoggedBody = 16 << 10
)

// redactedKeys are JSON keys carried by the accounts, auth and candidates APIs whose values
// never reach the logs. Matching is exact and case-insensitive, at any depth.
var redactedKeys = map[string]struct{}{
	"password":      {},
	"password_hash": {},
	"access_token":  {},
	"refresh_token": {},
	"national_id":   {},
	"phone_number1": {},
	"phone_number2": {},
}

var redactedHeaders = map[string]struct{}{
	"Authorization": {},
	"Cookie":        {},
	"Set-Cookie":    {},
}

// LoggingMiddleware logs every request and its response with credentials and candidate
// identifiers filtered out.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lg := base
			if traceID := w.Header().Get(TraceHeader); traceID != "" {
				lg = base.With("trace_id", traceID)
			}

			reqBody, reqTruncated := peekBody(r)
			lg.Info("incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", redactHeaders(r.Header),
				"body", redactBody(reqBody, reqTruncated),
			)

			respBody := &cappedBuffer{limit: maxLoggedBody}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(respBody)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			lg.Log(r.Context(), levelFor(status), "response",
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", ww.BytesWritten(),
				"body", redactBody(respBody.buf.Bytes(), respBody.overflow),
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// peekBody reads at most maxLoggedBody bytes and puts them back in front of the unread rest,
// so the handler still sees the whole body.
func peekBody(r *http.Request) ([]byte, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, false
	}
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

	if len(head) > maxLoggedBody {
		return head[:maxLoggedBody], true
	}
	return head, false
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if _, ok := redactedHeaders[http.CanonicalHeaderKey(name)]; ok {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactBody renders a JSON body with redacted values. Anything that cannot be parsed is
// summarized by size only.
func redactBody(body []byte, truncated bool) string {
	if len(body) == 0 {
		return ""
	}
	if truncated {
		return fmt.Sprintf("[body over %d bytes omitted]", maxLoggedBody)
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Sprintf("[non-JSON body, %d bytes]", len(body))
	}

	out, err := json.Marshal(redactValue(doc))
	if err != nil {
		return "[unloggable body]"
	}
	return string(out)
}

func redactValue(v interface{}) interface{} {
	switch node := v.(type) {
	case map[string]interface{}:
		for key, value := range node {
			if _, ok := redactedKeys[strings.ToLower(key)]; ok {
				node[key] = filtered
				continue
			}
			node[key] = redactValue(value)
		}
		return node
	case []interface{}:
		for i, item := range node {
			node[i] = redactValue(item)
		}
		return node
	default:
		return v
	}
}

// cappedBuffer keeps the first limit bytes written to it and remembers whether more arrived.
type cappedBuffer struct {
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	room := c.limit - c.buf.Len()
	if len(p) > room {
		c.overflow = true
		if room > 0 {
			c.buf.Write(p[:room])
		}
		return len(p), nil
	}
	c.buf.Write(p)
	return len(p), nil
}
