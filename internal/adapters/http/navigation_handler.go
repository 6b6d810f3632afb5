package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"rp-pay-dashboard/internal/navigation"
)

// NavigationHandler exposes each session's navigation controller.
type NavigationHandler struct {
	sessions *navigation.Sessions
	logger   *slog.Logger
}

func NewNavigationHandler(sessions *navigation.Sessions, logger *slog.Logger) *NavigationHandler {
	return &NavigationHandler{sessions: sessions, logger: logger}
}

type navigationResponse struct {
	navigation.State
	Back    navigation.Screen   `json:"back,omitempty"`
	Forward []navigation.Screen `json:"forward"`
}

func (h *NavigationHandler) respond(w http.ResponseWriter, st navigation.State) {
	edges := navigation.EdgesOf(st.Screen)
	writeJSON(w, navigationResponse{State: st, Back: edges.Back, Forward: edges.Forward}, http.StatusOK, h.logger)
}

func (h *NavigationHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.sessions.Get(sessionID(r.Context())).Current())
}

type goToRequest struct {
	Screen    navigation.Screen `json:"screen"`
	PaymentID string            `json:"payment_id"`
	AccountID string            `json:"account_id"`
}

func (h *NavigationHandler) HandleGoTo(w http.ResponseWriter, r *http.Request) {
	var req goToRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest, h.logger)
		return
	}
	if !req.Screen.Known() {
		writeJSONError(w, "unknown screen", http.StatusBadRequest, h.logger)
		return
	}
	ctrl := h.sessions.Get(sessionID(r.Context()))
	h.respond(w, ctrl.GoTo(req.Screen, navigation.Context{PaymentID: req.PaymentID, AccountID: req.AccountID}))
}

func (h *NavigationHandler) HandleBack(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.sessions.Get(sessionID(r.Context())).Back())
}
