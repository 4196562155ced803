// Package dashboard serves the what-if dashboard over a websocket. Each
// connection keeps its own baseline; the dashboard sends scenarios and
// receives calculated outcomes.
package dashboard

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"Plant3D/internal/auth"
	"Plant3D/internal/equipment"
	"Plant3D/internal/observability"
	"Plant3D/internal/review"
)

// ReviewSource loads a stored review to seed a session.
type ReviewSource interface {
	GetReview(ctx context.Context, id uuid.UUID) (review.Review, error)
}

type Server struct {
	upgrader websocket.Upgrader
	defaults equipment.Defaults
	reviews  ReviewSource
	logger   *zap.Logger
	metrics  *observability.Metrics
}

func NewServer(upgrader websocket.Upgrader, defaults equipment.Defaults, reviews ReviewSource, logger *zap.Logger, metrics *observability.Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		upgrader: upgrader,
		defaults: defaults,
		reviews:  reviews,
		logger:   logger,
		metrics:  metrics,
	}
}

// ServeHTTP upgrades the request. ?review=<id> seeds the session with that
// review's baseline, otherwise the configured fallbacks are used. Seeding
// needs a signed-in owner; other users' reviews answer 404.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	base, _ := equipment.Resolve(equipment.Parameters{}, s.defaults)
	if raw := r.URL.Query().Get("review"); raw != "" && s.reviews != nil {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid review id", http.StatusBadRequest)
			return
		}
		userID, ok := auth.UserID(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		rev, err := s.reviews.GetReview(r.Context(), id)
		if err == nil && rev.OwnerID != userID {
			err = review.ErrNotFound
		}
		if errors.Is(err, review.ErrNotFound) {
			http.Error(w, "Review not found", http.StatusNotFound)
			return
		}
		if err != nil {
			s.logger.Error("load review for dashboard", zap.String("review", raw), zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		base = rev.Baseline
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.metrics.DashboardSessions.Inc()
	defer s.metrics.DashboardSessions.Dec()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := newHub(conn, base, s.defaults, s.logger, s.metrics)
	go hub.handleRequest(ctx)
	go hub.handleResponse(ctx)

	for {
		var msg Msg
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("dashboard session ended", zap.Error(err))
			}
			return
		}
		select {
		case hub.msg <- msg:
		case <-ctx.Done():
			return
		}
	}
}
