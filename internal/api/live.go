package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/internal/domain"
	"github.com/symptom-triage-engine/internal/middleware"
	"github.com/symptom-triage-engine/internal/service"
)

const (
	liveReadLimit   = 8 << 10
	liveIdleTimeout = 2 * time.Minute
	liveWriteWait   = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// LiveMessage is sent by the client on the live channel. Text, when present,
// replaces the description; Toggle flips one symptom.
type LiveMessage struct {
	Text   *string `json:"text,omitempty"`
	Locale *string `json:"locale,omitempty"`
	Toggle string  `json:"toggle,omitempty"`
}

// LiveEvent is pushed to the client after every message.
type LiveEvent struct {
	Type     string                   `json:"type"` // selection or error
	Session  *service.SessionSnapshot `json:"session,omitempty"`
	Error    *domain.TriageError      `json:"error,omitempty"`
	Received int                      `json:"received"`
}

// handleLive resolves the session description as the user types and pushes
// the resulting selection back.
func (s *Server) handleLive(c *gin.Context) {
	session, ok := s.lookupSession(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.WithError(err).Debug("Live channel upgrade failed")
		return
	}
	defer conn.Close()

	log := s.logger.WithFields(logrus.Fields{
		"session_id":     session.ID(),
		"correlation_id": c.GetString(middleware.CorrelationIDKey),
	})
	log.Debug("Live channel opened")

	conn.SetReadLimit(liveReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(liveIdleTimeout))

	initial := session.Snapshot()
	if err := writeLive(conn, LiveEvent{Type: "selection", Session: &initial}); err != nil {
		return
	}

	for received := 1; ; received++ {
		var msg LiveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("Live channel closed unexpectedly")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(liveIdleTimeout))

		event := s.applyLive(session, msg)
		event.Received = received
		if err := writeLive(conn, event); err != nil {
			log.WithError(err).Debug("Live channel write failed")
			return
		}
	}
}

func (s *Server) applyLive(session *service.SelectionSession, msg LiveMessage) LiveEvent {
	if msg.Locale != nil {
		session.SetLocale(*msg.Locale)
	}

	var snapshot service.SessionSnapshot
	switch {
	case msg.Toggle != "":
		key, err := domain.ParseSymptomKey(msg.Toggle)
		if err == nil {
			snapshot, err = session.Toggle(key)
		}
		if err != nil {
			return LiveEvent{Type: "error", Error: liveError(err)}
		}
	case msg.Text != nil:
		snapshot = session.UpdateText(*msg.Text)
	default:
		snapshot = session.Snapshot()
	}
	return LiveEvent{Type: "selection", Session: &snapshot}
}

func liveError(err error) *domain.TriageError {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) || errors.Is(err, domain.ErrInvalidSymptomKey) {
		return domain.NewTriageError(domain.ErrValidation, "Invalid symptom", err.Error(), "")
	}
	return domain.NewTriageError(domain.ErrInternalServer, "Live update failed", "", "")
}

func writeLive(conn *websocket.Conn, event LiveEvent) error {
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return conn.WriteJSON(event)
}
