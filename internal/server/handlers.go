package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xaenox/haven-bot/internal/engine"
	"github.com/xaenox/haven-bot/internal/models"
	"github.com/xaenox/haven-bot/internal/responder"
)

const version = "1.0.0"

// historyLimit is how many recent turns are fed to the responder.
const historyLimit = 10

type Handler struct {
	engine    *engine.Engine
	responder responder.Generator
	logger    *zap.Logger
}

func NewHandler(eng *engine.Engine, gen responder.Generator, logger *zap.Logger) *Handler {
	return &Handler{
		engine:    eng,
		responder: gen,
		logger:    logger,
	}
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type chatResponse struct {
	Response     string                  `json:"response"`
	ResponseHTML string                  `json:"response_html"`
	UserID       string                  `json:"user_id"`
	MessageID    string                  `json:"message_id"`
	Analysis     *models.ContextSnapshot `json:"context_analysis,omitempty"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var request chatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(request.UserID) == "" {
		http.Error(w, "Missing user_id", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(request.Message) == "" {
		http.Error(w, "Missing message", http.StatusBadRequest)
		return
	}

	snapshot, _, err := h.engine.Analyze(r.Context(), request.UserID, request.Message)
	if err != nil {
		h.logger.Error("failed to analyze message",
			zap.Error(err),
			zap.String("user_id", request.UserID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	history, err := h.engine.History(r.Context(), request.UserID, historyLimit)
	if err != nil {
		h.logger.Error("failed to load history",
			zap.Error(err),
			zap.String("user_id", request.UserID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	reply, err := h.responder.Generate(r.Context(), request.UserID, request.Message, history, snapshot)
	if err != nil {
		h.logger.Error("failed to generate reply",
			zap.Error(err),
			zap.String("user_id", request.UserID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if snapshot.CurrentMessage != nil && snapshot.CurrentMessage.IsCrisis {
		reply += responder.CrisisFooter()
	}

	replyMsg, err := h.engine.RecordReply(r.Context(), request.UserID, reply)
	if err != nil {
		h.logger.Error("failed to record reply",
			zap.Error(err),
			zap.String("user_id", request.UserID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, chatResponse{
		Response:     reply,
		ResponseHTML: strings.ReplaceAll(reply, "\n", "<br>"),
		UserID:       request.UserID,
		MessageID:    replyMsg.ID,
		Analysis:     snapshot,
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	history, err := h.engine.History(r.Context(), userID, limit)
	if err != nil {
		h.writeEngineError(w, err, userID, "failed to load history")
		return
	}

	writeJSON(w, map[string]interface{}{
		"user_id": userID,
		"history": history,
	})
}

func (h *Handler) Analysis(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	snapshot, err := h.engine.UserSnapshot(r.Context(), userID)
	if err != nil {
		h.writeEngineError(w, err, userID, "failed to build analysis")
		return
	}

	summary, err := h.engine.UserSummary(r.Context(), userID)
	if err != nil {
		h.writeEngineError(w, err, userID, "failed to build summary")
		return
	}

	writeJSON(w, map[string]interface{}{
		"user_id":  userID,
		"analysis": snapshot,
		"summary":  summary,
	})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	summary, err := h.engine.UserSummary(r.Context(), userID)
	if err != nil {
		h.writeEngineError(w, err, userID, "failed to build summary")
		return
	}

	writeJSON(w, map[string]interface{}{
		"user_id": userID,
		"summary": summary,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":    "healthy",
		"version":   version,
		"timestamp": time.Now(),
	})
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error, userID, msg string) {
	if errors.Is(err, engine.ErrEmptyUserID) {
		http.Error(w, "Missing user_id", http.StatusBadRequest)
		return
	}
	h.logger.Error(msg, zap.Error(err), zap.String("user_id", userID))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}
