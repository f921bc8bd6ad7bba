package account

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/web"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/accounts", web.Handler(h.handleList))
	mux.Handle("POST /api/accounts", web.Handler(h.handleCreate))
	mux.Handle("GET /api/accounts/{id}", web.Handler(h.handleGet))
	mux.Handle("PATCH /api/accounts/{id}", web.Handler(h.handleUpdate))
	mux.Handle("DELETE /api/accounts/{id}", web.Handler(h.handleDelete))
}

func accountID(r *http.Request) (int64, *web.Error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &web.Error{Code: http.StatusBadRequest, Message: "Invalid account id", Err: err}
	}
	return id, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) *web.Error {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		return &web.Error{Code: http.StatusInternalServerError, Message: "Failed to list users", Err: err}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(users)
	return nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) *web.Error {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	user, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Failed to create user", Err: err}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(user)
	return nil
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) *web.Error {
	id, werr := accountID(r)
	if werr != nil {
		return werr
	}
	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		return &web.Error{Code: http.StatusNotFound, Message: "User not found", Err: err}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(user)
	return nil
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) *web.Error {
	id, werr := accountID(r)
	if werr != nil {
		return werr
	}
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	user, err := h.service.UpdateUser(r.Context(), id, &req)
	if err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Failed to update user", Err: err}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(user)
	return nil
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) *web.Error {
	id, werr := accountID(r)
	if werr != nil {
		return werr
	}
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Failed to delete user", Err: err}
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
