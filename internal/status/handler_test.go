package status

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/database"
)

func TestHandleStatus_ReportsDatabaseHealth(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate db: %v", err)
	}

	handler := NewHandler(db, 30*24*time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	recorder := httptest.NewRecorder()

	if webErr := handler.handleStatus(recorder, req); webErr != nil {
		t.Fatalf("handleStatus returned error: %+v", webErr)
	}
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Components["database"].Status != "healthy" {
		t.Fatalf("unexpected database status: %+v", resp.Components["database"])
	}
	if resp.Retention != "720h0m0s" {
		t.Fatalf("unexpected retention: %s", resp.Retention)
	}
}

func TestHandleHealth(t *testing.T) {
	handler := NewHandler(nil, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	recorder := httptest.NewRecorder()

	if webErr := handler.handleHealth(recorder, req); webErr != nil {
		t.Fatalf("handleHealth returned error: %+v", webErr)
	}
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
}
