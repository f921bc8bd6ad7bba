package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/auth"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/web"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/trash"
)

type Handler struct {
	catalogService *catalog.Service
	trashService   *trash.Service
}

func NewHandler(catalogService *catalog.Service, trashService *trash.Service) *Handler {
	return &Handler{
		catalogService: catalogService,
		trashService:   trashService,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/collections", web.Handler(h.handleListCollections))
	mux.Handle("POST /api/collections", web.Handler(h.handleCreateCollection))
	mux.Handle("GET /api/collections/{id}", web.Handler(h.handleGetCollection))
	mux.Handle("PUT /api/collections/{id}", web.Handler(h.handleUpdateCollection))
	mux.Handle("DELETE /api/collections/{id}", web.Handler(h.handleDeleteCollection))
	mux.Handle("GET /api/collections/{id}/containers", web.Handler(h.handleListContainers))

	mux.Handle("POST /api/containers", web.Handler(h.handleCreateContainer))
	mux.Handle("GET /api/containers/{id}", web.Handler(h.handleGetContainer))
	mux.Handle("PUT /api/containers/{id}", web.Handler(h.handleUpdateContainer))
	mux.Handle("DELETE /api/containers/{id}", web.Handler(h.handleDeleteContainer))
	mux.Handle("GET /api/containers/{id}/items", web.Handler(h.handleListItems))
	mux.Handle("POST /api/containers/{id}/items", web.Handler(h.handleAddMembership))
	mux.Handle("PUT /api/containers/{id}/items/{itemId}", web.Handler(h.handleUpdateMembership))
	mux.Handle("DELETE /api/containers/{id}/items/{itemId}", web.Handler(h.handleRemoveMembership))

	mux.Handle("POST /api/items", web.Handler(h.handleCreateItem))
	mux.Handle("GET /api/items/{id}", web.Handler(h.handleGetItem))
	mux.Handle("PUT /api/items/{id}", web.Handler(h.handleUpdateItem))
	mux.Handle("DELETE /api/items/{id}", web.Handler(h.handleDeleteItem))
	mux.Handle("POST /api/items/{id}/move", web.Handler(h.handleMoveItem))
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

func writeJSON(w http.ResponseWriter, status int, v any) *web.Error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return &web.Error{Code: http.StatusInternalServerError, Message: "Failed to encode response", Err: err}
	}
	return nil
}

func (h *Handler) handleListCollections(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	collections, err := h.catalogService.ListCollections(r.Context(), userID)
	if err != nil {
		return web.FromError(err, "Failed to list collections")
	}
	return writeJSON(w, http.StatusOK, collections)
}

func (h *Handler) handleCreateCollection(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	var req catalog.CreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	col, err := h.catalogService.CreateCollection(r.Context(), userID, &req)
	if err != nil {
		return web.FromError(err, "Failed to create collection")
	}
	return writeJSON(w, http.StatusCreated, col)
}

func (h *Handler) handleGetCollection(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	id, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}
	col, err := h.catalogService.GetCollection(r.Context(), userID, id)
	if err != nil {
		return web.FromError(err, "Failed to get collection")
	}
	return writeJSON(w, http.StatusOK, col)
}

func (h *Handler) handleUpdateCollection(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	id, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}
	var req catalog.UpdateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	col, err := h.catalogService.UpdateCollection(r.Context(), userID, id, &req)
	if err != nil {
		return web.FromError(err, "Failed to update collection")
	}
	return writeJSON(w, http.StatusOK, col)
}

func (h *Handler) handleDeleteCollection(w http.ResponseWriter, r *http.Request) *web.Error {
	return h.handleDelete(w, r, catalog.EntityCollection)
}

func (h *Handler) handleDeleteContainer(w http.ResponseWriter, r *http.Request) *web.Error {
	return h.handleDelete(w, r, catalog.EntityContainer)
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) *web.Error {
	return h.handleDelete(w, r, catalog.EntityItem)
}

// handleDelete is the shared soft-delete path: the entity moves to the
// trash, it is not removed.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, entityType catalog.EntityType) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	id, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}
	record, err := h.trashService.SoftDelete(r.Context(), entityType, id, userID)
	if err != nil {
		return web.FromError(err, "Failed to delete "+string(entityType))
	}
	return writeJSON(w, http.StatusOK, map[string]int64{"trashRecordId": record.ID})
}

func (h *Handler) handleListContainers(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	collectionID, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}
	containers, err := h.catalogService.ListContainers(r.Context(), userID, collectionID)
	if err != nil {
		return web.FromError(err, "Failed to list containers")
	}
	return writeJSON(w, http.StatusOK, containers)
}

func (h *Handler) handleCreateContainer(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	var req catalog.CreateContainerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	cont, err := h.catalogService.CreateContainer(r.Context(), userID, &req)
	if err != nil {
		return web.FromError(err, "Failed to create container")
	}
	return writeJSON(w, http.StatusCreated, cont)
}

func (h *Handler) handleGetContainer(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	id, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}
	cont, err := h.catalogService.GetContainer(r.Context(), userID, id)
	if err != nil {
		return web.FromError(err, "Failed to get container")
	}
	return writeJSON(w, http.StatusOK, cont)
}

func (h *Handler) handleUpdateContainer(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	id, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}
	var req catalog.UpdateContainerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	cont, err := h.catalogService.UpdateContainer(r.Context(), userID, id, &req)
	if err != nil {
		return web.FromError(err, "Failed to update container")
	}
	return writeJSON(w, http.StatusOK, cont)
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	containerID, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}
	items, err := h.catalogService.ListItems(r.Context(), userID, containerID)
	if err != nil {
		return web.FromError(err, "Failed to list items")
	}
	return writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	var req catalog.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	item, err := h.catalogService.CreateItem(r.Context(), userID, &req)
	if err != nil {
		return web.FromError(err, "Failed to create item")
	}
	return writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	id, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}
	item, err := h.catalogService.GetItem(r.Context(), userID, id)
	if err != nil {
		return web.FromError(err, "Failed to get item")
	}
	return writeJSON(w, http.StatusOK, item)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	id, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}
	var req catalog.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	item, err := h.catalogService.UpdateItem(r.Context(), userID, id, &req)
	if err != nil {
		return web.FromError(err, "Failed to update item")
	}
	return writeJSON(w, http.StatusOK, item)
}

func (h *Handler) handleAddMembership(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	containerID, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}
	var req catalog.AddMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	req.ContainerID = containerID
	membership, err := h.catalogService.AddMembership(r.Context(), userID, &req)
	if err != nil {
		return web.FromError(err, "Failed to place item")
	}
	return writeJSON(w, http.StatusCreated, membership)
}

func (h *Handler) handleUpdateMembership(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	containerID, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}
	itemID, werr := pathID(r, "itemId")
	if werr != nil {
		return werr
	}
	var req catalog.UpdateMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	membership, err := h.catalogService.UpdateMembership(r.Context(), userID, containerID, itemID, &req)
	if err != nil {
		return web.FromError(err, "Failed to update placement")
	}
	return writeJSON(w, http.StatusOK, membership)
}

func (h *Handler) handleRemoveMembership(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	containerID, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}
	itemID, werr := pathID(r, "itemId")
	if werr != nil {
		return werr
	}
	if err := h.catalogService.RemoveMembership(r.Context(), userID, containerID, itemID); err != nil {
		return web.FromError(err, "Failed to remove placement")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) handleMoveItem(w http.ResponseWriter, r *http.Request) *web.Error {
	userID, werr := currentUserID(r)
	if werr != nil {
		return werr
	}
	itemID, werr := pathID(r, "id")
	if werr != nil {
		return werr
	}
	var req catalog.MoveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &web.Error{Code: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	req.ItemID = itemID
	if err := h.catalogService.MoveItem(r.Context(), userID, &req); err != nil {
		return web.FromError(err, "Failed to move item")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
