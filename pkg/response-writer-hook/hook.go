package hook

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
)

var ErrHijackNotSupported = errors.New("underlying ResponseWriter does not implement http.Hijacker")

// BeforeHeader is called once, right before the status line and header
// are sent. The header can still be changed.
//
// bodyFollows reports whether the response carries content. Writing body
// bytes, or setting a status that allows a body without Content-Length: 0,
// declares content. A handler that returns without writing anything does
// not, and neither does a 1xx, 204 or 304 status.
type BeforeHeader func(statusCode int, bodyFollows bool)

// ResponseWriter is a wrapper around http.ResponseWriter that runs a hook
// before the header is committed.
type ResponseWriter struct {
	rw           http.ResponseWriter
	before       BeforeHeader
	status       int
	wroteHeaders bool
}

// Implementation of http.ResponseWriter
func (t *ResponseWriter) Header() http.Header {
	return t.rw.Header()
}

// Implementation of http.ResponseWriter
func (t *ResponseWriter) WriteHeader(statusCode int) {
	t.writeHeader(statusCode, bodyAllowed(statusCode) && t.rw.Header().Get("Content-Length") != "0")
}

func (t *ResponseWriter) writeHeader(statusCode int, bodyFollows bool) {
	if t.wroteHeaders {
		return
	}
	// informational responses are not final, the hook waits for the real one
	if statusCode >= 100 && statusCode < 200 && statusCode != http.StatusSwitchingProtocols {
		t.rw.WriteHeader(statusCode)
		return
	}
	t.wroteHeaders = true
	t.status = statusCode
	if t.before != nil {
		t.before(statusCode, bodyFollows)
	}
	t.rw.WriteHeader(statusCode)
}

// Implementation of http.ResponseWriter
func (t *ResponseWriter) Write(b []byte) (int, error) {
	// write headers if not already written
	if !t.wroteHeaders {
		t.writeHeader(http.StatusOK, true)
	}
	return t.rw.Write(b)
}

// Flush implements http.Flusher if the underlying writer does.
func (t *ResponseWriter) Flush() {
	if !t.wroteHeaders {
		t.writeHeader(http.StatusOK, true)
	}
	if f, ok := t.rw.(http.Flusher); ok {
		f.Flush()
	}
}

// ReadFrom implements io.ReaderFrom, using the underlying writer's
// ReadFrom when it has one.
func (t *ResponseWriter) ReadFrom(r io.Reader) (int64, error) {
	if !t.wroteHeaders {
		t.writeHeader(http.StatusOK, true)
	}
	if rf, ok := t.rw.(io.ReaderFrom); ok {
		return rf.ReadFrom(r)
	}
	return io.Copy(t.rw, r)
}

// Hijack implements http.Hijacker if the underlying writer does. The hook
// does not run for a hijacked connection.
func (t *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := t.rw.(http.Hijacker)
	if !ok {
		return nil, nil, ErrHijackNotSupported
	}
	conn, rw, err := h.Hijack()
	if err == nil {
		t.wroteHeaders = true
	}
	return conn, rw, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (t *ResponseWriter) Unwrap() http.ResponseWriter {
	return t.rw
}

// Finish commits the header of a response that wrote nothing, so the hook
// also runs for empty responses. Call it after the handler returns.
func (t *ResponseWriter) Finish() {
	if !t.wroteHeaders {
		t.writeHeader(http.StatusOK, false)
	}
}

// StatusCode returns the status code of the response, or zero if the
// header was not written yet.
func (t *ResponseWriter) StatusCode() int {
	return t.status
}

// NewResponseWriter returns a ResponseWriter calling before once.
func NewResponseWriter(w http.ResponseWriter, before BeforeHeader) *ResponseWriter {
	return &ResponseWriter{
		rw:     w,
		before: before,
	}
}

// bodyAllowed mirrors net/http: 1xx, 204 and 304 responses have no body.
func bodyAllowed(status int) bool {
	if status >= 100 && status <= 199 {
		return false
	}
	return status != http.StatusNoContent && status != http.StatusNotModified
}
