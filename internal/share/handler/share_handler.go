package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/auth"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/web"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/share"
)

type Handler struct {
	shareService *share.Service
}

func NewHandler(shareService *share.Service) *Handler {
	return &Handler{shareService: shareService}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/shares", web.Handler(h.handleListMine))
	mux.Handle("POST /api/shares", web.Handler(h.handleInvite))
	mux.Handle("POST /api/shares/accept", web.Handler(h.handleAccept))
	mux.Handle("DELETE /api/shares/{id}", web.Handler(h.handleRevoke))
	mux.Handle("GET /api/collections/{id}/shares", web.Handler(h.handleListForCollection))
}

func currentUserID(r *http.Request) (int64, *web.Error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return 0, &web.Error{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	}
	return claims.UserID, nil
}

func pathID(r *http.Request, name string) (int64, *web.Error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &web.Error{Code: http.StatusBadRequest, Message: "Invalid id", Err: err}
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, v any) *web.Error {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return &web.Error{Code: http.StatusInternalServerError, Message: "Failed to encode response", Err: err}
	}
	return nil
}

func (h *Handler) handleInvite(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}

	var req share.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}

	grant, err := h.shareService.Invite(r.Context(), userID, &req)
	if err != nil {
		return web.FromError(err, "Failed to create share")
	}
	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, grant)
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}

	grant, err := h.shareService.Accept(r.Context(), req.Token, userID)
	if err != nil {
		return web.FromError(err, "Failed to accept share")
	}
	return writeJSON(w, grant)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	id, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}

	if err := h.shareService.Revoke(r.Context(), id, userID); err != nil {
		return web.FromError(err, "Failed to revoke share")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}

	grants, err := h.shareService.ListForUser(r.Context(), userID)
	if err != nil {
		return web.FromError(err, "Failed to list shares")
	}
	return writeJSON(w, grants)
}

func (h *Handler) handleListForCollection(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	collectionID, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}

	grants, err := h.shareService.ListForCollection(r.Context(), userID, collectionID)
	if err != nil {
		return web.FromError(err, "Failed to list collection shares")
	}
	return writeJSON(w, grants)
}
