package status

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/web"
)

type ComponentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Components map[string]ComponentStatus `json:"components"`
	Retention  string                     `json:"retention"`
}

type Handler struct {
	db        *sql.DB
	retention time.Duration
}

func NewHandler(db *sql.DB, retention time.Duration) *Handler {
	return &Handler{
		db:        db,
		retention: retention,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/health", web.Handler(h.handleHealth))
	mux.Handle("GET /api/status", web.Handler(h.handleStatus))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) *web.Error {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	return nil
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) *web.Error {
	components := make(map[string]ComponentStatus)
	components["database"] = h.checkDatabase()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(StatusResponse{
		Components: components,
		Retention:  h.retention.String(),
	})
	return nil
}

func (h *Handler) checkDatabase() ComponentStatus {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return ComponentStatus{
			Status:  "unhealthy",
			Message: "database connection failed",
		}
	}

	return ComponentStatus{
		Status:  "healthy",
		Message: "ok",
	}
}
