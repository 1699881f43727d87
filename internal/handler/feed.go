package handler

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/observability/metrics"
	"github.com/visulab/backend/internal/security/auth"
	"github.com/visulab/backend/internal/service"
)

const feedSendBuffer = 16

// feedClient is one connected dashboard tab. Admin clients receive
// every tenant's events; regular clients only their own company's.
type feedClient struct {
	companyID string
	admin     bool
	send      chan service.FeedEvent
}

// FeedHandler upgrades dashboard connections to websockets and fans
// record events out to them. It implements service.FeedPublisher.
type FeedHandler struct {
	tokens         *auth.TokenManager
	logger         *slog.Logger
	allowedOrigins []string

	mu      sync.Mutex
	clients map[*feedClient]struct{}
}

// NewFeedHandler creates a new live feed handler
func NewFeedHandler(tokens *auth.TokenManager, allowedOrigins []string, logger *slog.Logger) *FeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedHandler{
		tokens:         tokens,
		logger:         logger,
		allowedOrigins: allowedOrigins,
		clients:        make(map[*feedClient]struct{}),
	}
}

// Publish broadcasts a record event to connected clients. Slow clients
// are skipped rather than blocking the publisher.
func (h *FeedHandler) Publish(event service.FeedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.admin && c.companyID != event.CompanyID {
			continue
		}
		select {
		case c.send <- event:
		default:
		}
	}
}

// upgrader is initialized per-request to use instance's allowed origins
func (h *FeedHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Allow requests with no origin (e.g., non-browser clients)
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/feed?token=... Browsers cannot set an
// Authorization header on websocket dials, so the token rides the query.
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	client := &feedClient{
		companyID: claims.TenantID,
		admin:     claims.Role == domain.RoleAdmin,
		send:      make(chan service.FeedEvent, feedSendBuffer),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	metrics.IncrementFeedClients()
	h.logger.Info("feed client connected",
		slog.String("user_id", claims.UserID),
		slog.String("company_id", claims.TenantID),
	)

	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		metrics.DecrementFeedClients()
		h.logger.Info("feed client disconnected", slog.String("user_id", claims.UserID))
	}()

	// Reader drains control frames and notices the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event := <-client.send:
			if err := ws.WriteJSON(event); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Debug("websocket closed", slog.String("user_id", claims.UserID))
				}
				return
			}
		case <-ticker.C:
			_ = ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		case <-done:
			return
		}
	}
}
