// Package http exposes the application over a JSON API: auth, expense
// CRUD, live snapshot events, import/export and attachment downloads.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net"
	"net/http"
	"sync"
	"time"

	"saldo/internal/auth"
	"saldo/internal/live"
	"saldo/internal/log"
	"saldo/internal/services"
)

type Server struct {
	http.Server

	ledger   *services.Ledger
	importer *services.Importer
	exporter *services.Exporter
	hub      *live.Hub
	auth     *auth.Service

	defaultLocale string
	limiter       *rateLimiter
	logger        *log.Logger
}

// Options carries the collaborators the server fronts.
type Options struct {
	Ledger   *services.Ledger
	Importer *services.Importer
	Exporter *services.Exporter
	Hub      *live.Hub
	Auth     *auth.Service

	// DefaultLocale is used when the request carries no usable locale.
	DefaultLocale string

	// BlobDir, when set, mounts direct downloads for the local blob
	// backend under /api/blobs/.
	BlobDir string

	Logger *log.Logger
}

func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		ledger:        opts.Ledger,
		importer:      opts.Importer,
		exporter:      opts.Exporter,
		hub:           opts.Hub,
		auth:          opts.Auth,
		defaultLocale: opts.DefaultLocale,
		limiter:       newRateLimiter(120, time.Minute),
		logger:        logger.WithComponent(log.ComponentHTTP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.Handle("GET /api/expenses", s.requireSession(s.handleListExpenses))
	mux.Handle("GET /api/expenses/events", s.requireSession(s.handleEvents))
	mux.Handle("POST /api/expenses", s.requireEditor(s.handleCreateExpense))
	mux.Handle("PUT /api/expenses/{id}", s.requireEditor(s.handleUpdateExpense))
	mux.Handle("DELETE /api/expenses/{id}", s.requireEditor(s.handleDeleteExpense))
	mux.Handle("GET /api/expenses/{id}/attachment", s.requireSession(s.handleAttachment))

	mux.Handle("POST /api/import", s.requireEditor(s.handleImport))
	mux.Handle("GET /api/export", s.requireSession(s.handleExport))

	if opts.BlobDir != "" {
		mux.Handle("GET /api/blobs/",
			s.requireSession(http.StripPrefix("/api/blobs/", http.FileServer(http.Dir(opts.BlobDir))).ServeHTTP))
	}

	s.Server = http.Server{
		Addr:           addr,
		Handler:        s.withSecurityHeaders(s.withRateLimit(s.withRequestLog(mux))),
		ReadTimeout:    10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		ctx := context.WithValue(r.Context(), log.LoggerContextKey,
			s.logger.With(log.FieldRequestID, requestID))
		next.ServeHTTP(rw, r.WithContext(ctx))

		s.logger.InfoContext(r.Context(), "HTTP request",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.status,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP(r))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush forwards flushing so the SSE handler keeps working behind the
// logging wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimiter is a fixed-window per-IP counter.
type rateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	counts   map[string]int
	resetAt  time.Time
	stopOnce sync.Once
	done     chan struct{}
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		limit:   limit,
		window:  window,
		counts:  make(map[string]int),
		resetAt: time.Now().Add(window),
		done:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if time.Now().After(rl.resetAt) {
		rl.counts = make(map[string]int)
		rl.resetAt = time.Now().Add(rl.window)
	}
	rl.counts[ip]++
	return rl.counts[ip] <= rl.limit
}

func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			rl.counts = make(map[string]int)
			rl.resetAt = time.Now().Add(rl.window)
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}
