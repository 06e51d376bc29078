//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/himanishpuri/FoodLens/pkg/logger"
)

// setupRoutes registers all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	r := mux.NewRouter()

	// Root endpoint
	r.HandleFunc("/", s.handleRoot).Methods("GET")

	// Health endpoints
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/health/metrics", s.handleMetrics).Methods("GET")

	// Camera sessions
	r.HandleFunc("/api/sessions", s.handleCreateSession).Methods("POST")
	r.HandleFunc("/api/sessions/{id}", s.handleGetSession).Methods("GET")
	r.HandleFunc("/api/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	r.HandleFunc("/api/sessions/{id}/events", s.handlePostEvents).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/stream", s.handleStream).Methods("GET")

	// Scan journal
	r.HandleFunc("/api/scans", s.handleListScans).Methods("GET")
	r.HandleFunc("/api/scans/{id}", s.handleGetScan).Methods("GET")
	r.HandleFunc("/api/scans/{id}", s.handleDeleteScan).Methods("DELETE")

	// Stateless helpers
	r.HandleFunc("/api/validate", s.handleValidate).Methods("POST")
	r.HandleFunc("/api/frame", s.handleFrame).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.respondError(w, http.StatusNotFound, "No route for "+req.URL.Path)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.respondError(w, http.StatusMethodNotAllowed, req.Method+" not allowed on "+req.URL.Path)
	})

	// Wrap with CORS middleware
	return corsMiddleware(s.config.AllowedOrigins)(r)
}

func allowsAllOrigins(allowedOrigins []string) bool {
	return len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*")
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if allowsAllOrigins(allowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				allowed = true
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			// Handle preflight requests
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originChecker applies the CORS origin list to websocket upgrades
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if allowsAllOrigins(allowedOrigins) {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowedOrigin := range allowedOrigins {
			if allowedOrigin == origin {
				return true
			}
		}
		return false
	}
}

// loggingMiddleware logs all HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		log := logger.Named("http")
		log.Debugf("%s %s from %s", r.Method, r.URL.Path, getClientIP(r))

		next.ServeHTTP(wrapped, r)

		log.Infof("%s %s -> %d", r.Method, r.URL.Path, wrapped.statusCode)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the wrapper
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Start starts the HTTP server
func (s *Server) Start(logRequests bool) error {
	handler := s.setupRoutes()
	if logRequests {
		handler = loggingMiddleware(handler)
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.log.Infof("🚀 FoodLens server starting on %s", addr)
	s.log.Infof("   Database: %s", s.config.DBPath)
	s.log.Infof("   CORS Origins: %v", s.config.AllowedOrigins)
	s.log.Infof("Endpoints:")
	s.log.Infof("   GET    /health                      - Health check")
	s.log.Infof("   GET    /api/health/metrics          - Server metrics")
	s.log.Infof("   POST   /api/sessions                - Open a camera session")
	s.log.Infof("   GET    /api/sessions/{id}           - Session state")
	s.log.Infof("   DELETE /api/sessions/{id}           - Close a session")
	s.log.Infof("   POST   /api/sessions/{id}/events    - Feed host events")
	s.log.Infof("   GET    /api/sessions/{id}/stream    - Websocket event stream")
	s.log.Infof("   GET    /api/scans                   - List journalled scans")
	s.log.Infof("   GET    /api/scans/{id}              - Get scan by ID")
	s.log.Infof("   DELETE /api/scans/{id}              - Delete scan by ID")
	s.log.Infof("   POST   /api/validate                - Validate a barcode payload")
	s.log.Infof("   POST   /api/frame                   - Compute a crop rectangle")

	return http.ListenAndServe(addr, handler)
}
