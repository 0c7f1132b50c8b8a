package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

type createSessionRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CreateSession starts a new assistant conversation
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decode(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	session, err := h.svc.CreateSession(r.Context(), req.ID, req.Title)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

// Session returns one conversation
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Session(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// Messages returns a conversation transcript
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.svc.Messages(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage appends a user turn and returns the assistant's reply
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decode(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.Content == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "content is required"})
		return
	}

	reply, err := h.svc.SendMessage(r.Context(), mux.Vars(r)["id"], req.Content)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reply)
}
