// Package manifestserver publishes manifest text over plain HTTP and
// over a WebSocket endpoint that streams it line by line.
package manifestserver

import (
	"bufio"
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"
)

const (
	TextPath   = "/manifest.txt"
	StreamPath = "/manifest"
)

type Server struct {
	mu    sync.RWMutex
	text  []byte
	token string

	// Requests counts manifest requests served on either endpoint.
	Requests atomic.Int64
}

func New(text []byte) *Server {
	return &Server{text: bytes.Clone(text)}
}

// RequireToken makes both endpoints demand "Authorization: Bearer tok".
func (s *Server) RequireToken(tok string) {
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
}

// SetText swaps the published manifest, as a new depot build would.
func (s *Server) SetText(text []byte) {
	s.mu.Lock()
	s.text = bytes.Clone(text)
	s.mu.Unlock()
}

func (s *Server) snapshot() ([]byte, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text, s.token
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+TextPath, s.handleText)
	mux.HandleFunc("GET "+StreamPath, s.handleStream)
	return mux
}

// NewTest starts an httptest server, for use in tests.
func (s *Server) NewTest() *httptest.Server {
	return httptest.NewServer(s.Handler())
}

func (s *Server) authorized(
	w http.ResponseWriter, r *http.Request, token string,
) bool {
	if token == "" {
		return true
	}
	if r.Header.Get("Authorization") == "Bearer "+token {
		return true
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"invalid token","code":"unauthorized"}`))
	return false
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	text, token := s.snapshot()
	if !s.authorized(w, r, token) {
		return
	}
	s.Requests.Add(1)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(text)))
	w.Write(text)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	text, token := s.snapshot()
	if !s.authorized(w, r, token) {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Debug("websocket accept", "err", err)
		return
	}
	defer conn.CloseNow()
	s.Requests.Add(1)

	ctx := r.Context()
	scanner := bufio.NewScanner(bytes.NewReader(text))
	scanner.Buffer(make([]byte, 64<<10), 1<<20)
	scanner.Split(scanLinesKeepEOL)
	for scanner.Scan() {
		err := conn.Write(ctx, websocket.MessageText, scanner.Bytes())
		if err != nil {
			slog.Debug("websocket write", "err", err)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		conn.Close(websocket.StatusInternalError, err.Error())
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

// scanLinesKeepEOL splits like bufio.ScanLines but keeps the line
// terminator, so frames concatenate back to the original text.
func scanLinesKeepEOL(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i+1], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Addr normalizes a listen address, defaulting the host to localhost.
func Addr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "127.0.0.1" + addr
	}
	return addr
}
