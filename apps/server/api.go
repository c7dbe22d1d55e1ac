package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/samber/lo"

	"github.com/novachat/nova-chat/pkg/chat"
	"github.com/novachat/nova-chat/pkg/model"
)

type apiServer struct {
	svc *chat.Service
	hub *Hub
	log *slog.Logger
}

func newRoutes(svc *chat.Service, hub *Hub, log *slog.Logger) *http.ServeMux {
	s := &apiServer{svc: svc, hub: hub, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/messages", s.handleGetMessages)
	mux.HandleFunc("POST /api/messages", s.handlePostMessage)
	mux.HandleFunc("DELETE /api/messages/{id}", s.handleDeleteMessage)
	mux.HandleFunc("GET /api/presence", s.handlePresence)
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, svc, w, r)
	})
	return mux
}

func CORSMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if r.Method == http.MethodOptions {
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *apiServer) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("Nova Chat backend is running"))
}

// handleGetMessages returns the recent history, oldest-first. The store
// answers when reachable, the fallback buffer otherwise; either way this
// endpoint never fails because of the store.
func (s *apiServer) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.svc.History(r.Context(), 0)
	if err != nil {
		s.log.Error("history", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to retrieve history")
		return
	}

	items := lo.Map(msgs, func(m model.Message, _ int) model.HistoryItem { return m.History() })
	if items == nil {
		items = []model.HistoryItem{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *apiServer) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req chat.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := s.svc.Send(r.Context(), req)
	if err != nil {
		if errors.Is(err, chat.ErrValidation) {
			s.writeError(w, http.StatusBadRequest, "username and message are required")
			return
		}
		s.log.Error("send", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	s.writeJSON(w, http.StatusCreated, msg.Wire())
}

func (s *apiServer) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	removed, err := s.svc.Delete(r.Context(), id)
	if err != nil {
		s.log.Error("delete", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete message")
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound, "message not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "deletedId": id})
}

func (s *apiServer) handlePresence(w http.ResponseWriter, r *http.Request) {
	online, err := s.hub.OnlineSessions(r.Context())
	if err != nil {
		s.log.Warn("presence lookup", "error", err)
		online = 0
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"online": online})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
