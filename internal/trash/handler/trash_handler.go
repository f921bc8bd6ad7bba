package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/auth"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/web"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/trash"
)

type Handler struct {
	trashService *trash.Service
}

func NewHandler(trashService *trash.Service) *Handler {
	return &Handler{trashService: trashService}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/trash", web.Handler(h.handleListTrash))
	mux.Handle("POST /api/trash/{id}/restore", web.Handler(h.handleRestore))
	mux.Handle("DELETE /api/trash/{id}", web.Handler(h.handlePurge))
}

func currentUserID(r *http.Request) (int64, *web.Error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return 0, &web.Error{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	}
	return claims.UserID, nil
}

func recordID(r *http.Request) (int64, *web.Error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &web.Error{Code: http.StatusBadRequest, Message: "Invalid trash record id", Err: err}
	}
	return id, nil
}

func (h *Handler) handleListTrash(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}

	entries, err := h.trashService.ListTrash(r.Context(), userID)
	if err != nil {
		return web.FromError(err, "Failed to list trash")
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		return &web.Error{Code: http.StatusInternalServerError, Message: "Failed to encode trash list", Err: err}
	}
	return nil
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	id, werr := recordID(r)
	if werr != nil {
		return werr
	}

	summary, err := h.trashService.Restore(r.Context(), id, userID)
	if err != nil {
		return web.FromError(err, "Failed to restore")
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		return &web.Error{Code: http.StatusInternalServerError, Message: "Failed to encode restore summary", Err: err}
	}
	return nil
}

func (h *Handler) handlePurge(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	id, werr := recordID(r)
	if werr != nil {
		return werr
	}

	if err := h.trashService.PurgeNow(r.Context(), id, userID); err != nil {
		return web.FromError(err, "Failed to purge")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
