package httpapi

import (
	"net/http"

	"hydrosense-data/internal/service"

	"go.uber.org/zap"
)

// InvitationHandler 家庭邀请 Handler
type InvitationHandler struct {
	invitations *service.InvitationService
	logger      *zap.Logger
}

// NewInvitationHandler 创建家庭邀请 Handler
func NewInvitationHandler(invitations *service.InvitationService, logger *zap.Logger) *InvitationHandler {
	return &InvitationHandler{
		invitations: invitations,
		logger:      logger,
	}
}

const invitationsBasePath = "/app/api/v1/invitations"

// ServeHTTP 实现 http.Handler 接口
func (h *InvitationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := AuthUserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Fail("not authenticated"))
		return
	}

	switch r.URL.Path {
	case invitationsBasePath:
		switch r.Method {
		case http.MethodGet:
			h.List(w, r, user.UserID)
		case http.MethodPost:
			h.Invite(w, r, user.UserID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case invitationsBasePath + "/accept":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Accept(w, r, user.UserID)
	case invitationsBasePath + "/decline":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Decline(w, r, user.UserID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// List 列出某家庭的邀请（仅 admin）
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request, userID string) {
	householdID := r.URL.Query().Get("household_id")
	if householdID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("household_id is required"))
		return
	}

	items, err := h.invitations.ListInvitations(r.Context(), userID, householdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

// Invite 创建邀请
func (h *InvitationHandler) Invite(w http.ResponseWriter, r *http.Request, userID string) {
	var req service.InviteRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	item, err := h.invitations.Invite(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

type invitationTokenBody struct {
	Token string `json:"token"`
}

// Accept 接受邀请
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request, userID string) {
	var req invitationTokenBody
	if err := readBodyJSON(r, 1<<20, &req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, Fail("token is required"))
		return
	}

	if err := h.invitations.Accept(r.Context(), userID, req.Token); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"accepted": true}))
}

// Decline 拒绝邀请
func (h *InvitationHandler) Decline(w http.ResponseWriter, r *http.Request, userID string) {
	var req invitationTokenBody
	if err := readBodyJSON(r, 1<<20, &req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, Fail("token is required"))
		return
	}

	if err := h.invitations.Decline(r.Context(), userID, req.Token); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"declined": true}))
}
