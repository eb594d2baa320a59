// Package realtime pushes notifications to connected clients over websockets.
package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/olahol/melody"
	"github.com/sirupsen/logrus"
)

const userKey = "userId"

// startWait bounds how long NewHub waits for melody's hub loop.
const startWait = time.Second

// Hub keys melody sessions by user id.
type Hub struct {
	m      *melody.Melody
	logger *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	m := melody.New()
	h := &Hub{m: m, logger: logger}

	m.HandleConnect(func(s *melody.Session) {
		userID, _ := s.Get(userKey)
		h.logger.WithField("user_id", userID).Debug("websocket connected")
	})
	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get(userKey)
		h.logger.WithField("user_id", userID).Debug("websocket disconnected")
	})
	m.HandleError(func(s *melody.Session, err error) {
		userID, _ := s.Get(userKey)
		h.logger.WithError(err).WithField("user_id", userID).Warn("websocket error")
	})

	// melody reports closed until its hub goroutine is running
	deadline := time.Now().Add(startWait)
	for m.IsClosed() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if m.IsClosed() {
		logger.Warn("websocket hub not running yet")
	}
	return h
}

// Serve upgrades the request and registers the session for userID.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	return h.m.HandleRequestWithKeys(w, r, map[string]interface{}{userKey: userID})
}

// PushToUser sends payload, JSON encoded, to every session of userID.
func (h *Hub) PushToUser(userID string, payload interface{}) error {
	msg, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return h.m.BroadcastFilter(msg, func(s *melody.Session) bool {
		v, ok := s.Get(userKey)
		return ok && v == userID
	})
}

// Sessions returns the number of open sessions.
func (h *Hub) Sessions() int {
	return h.m.Len()
}

// Close disconnects every session.
func (h *Hub) Close() error {
	return h.m.Close()
}
