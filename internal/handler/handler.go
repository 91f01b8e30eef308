package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/foodbridge-dev/foodbridge/internal/config"
	"github.com/foodbridge-dev/foodbridge/internal/logger"
	"github.com/foodbridge-dev/foodbridge/internal/service"
)

type Handler struct {
	auth       service.AuthService
	moderation service.ModerationService
	posts      service.PostService
	requests   service.RequestService
	chat       service.ChatService
	cfg        *config.Config
}

func New(
	auth service.AuthService,
	moderation service.ModerationService,
	posts service.PostService,
	requests service.RequestService,
	chat service.ChatService,
	cfg *config.Config,
) *Handler {
	return &Handler{auth, moderation, posts, requests, chat, cfg}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

// writeSSE streams one event in text/event-stream framing. The writer must
// support flushing, otherwise events would sit in a buffer until the stream
// ends and the client would never see them in time.
func writeSSE(w http.ResponseWriter, v interface{}) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return errors.New("response writer does not support streaming")
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\n\n")); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
