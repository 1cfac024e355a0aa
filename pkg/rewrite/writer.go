package rewrite

import (
	"bytes"
	"mime"
	"net/http"
)

// bufferedWriter holds back a text/html body until the handler returns.
// Any other response, or an HTML body past the limit, passes through.
// WriteHeader only records the status; whether the body is buffered is
// decided once the content type is known, which for an untyped body is at
// the first Write.
type bufferedWriter struct {
	http.ResponseWriter
	limit       int
	status      int
	buf         bytes.Buffer
	wroteHeader bool
	decided     bool
	passthrough bool
	overflowed  bool
}

func newBufferedWriter(w http.ResponseWriter, limit int) *bufferedWriter {
	return &bufferedWriter{ResponseWriter: w, limit: limit, status: http.StatusOK}
}

func (w *bufferedWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code

	// Headers are frozen from here on, so a typed or non-200 response can be
	// settled now.
	if code != http.StatusOK || w.Header().Get("Content-Type") != "" {
		w.decide()
	}
}

// decide picks buffering or passthrough for the recorded status and headers.
func (w *bufferedWriter) decide() {
	if w.decided {
		return
	}
	w.decided = true
	if w.status != http.StatusOK || !rewritable(w.Header()) {
		w.passthrough = true
		w.ResponseWriter.WriteHeader(w.status)
	}
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if !w.decided {
		if len(p) == 0 {
			return 0, nil
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(p))
		}
		w.decide()
	}
	if w.passthrough {
		return w.ResponseWriter.Write(p)
	}

	if w.buf.Len()+len(p) > w.limit {
		w.overflowed = true
		if err := w.release(); err != nil {
			return 0, err
		}
		return w.ResponseWriter.Write(p)
	}
	return w.buf.Write(p)
}

// Flush ends buffering and writes what is held so far.
func (w *bufferedWriter) Flush() {
	if !w.passthrough {
		if !w.wroteHeader {
			w.WriteHeader(http.StatusOK)
		}
		w.decide()
		_ = w.release()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// settle is called once the handler returned. A status written without a
// body or a content type is forwarded as is.
func (w *bufferedWriter) settle() {
	if w.wroteHeader && !w.decided {
		w.decide()
	}
}

func (w *bufferedWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// release writes the buffered head and switches to passthrough.
func (w *bufferedWriter) release() error {
	if w.passthrough {
		return nil
	}
	w.passthrough = true
	w.ResponseWriter.WriteHeader(w.status)
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

// buffered reports whether the handler produced a complete HTML body to rewrite.
func (w *bufferedWriter) buffered() bool {
	return w.decided && !w.passthrough
}

func rewritable(h http.Header) bool {
	if h.Get("Content-Encoding") != "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(h.Get("Content-Type"))
	return err == nil && mt == "text/html"
}
