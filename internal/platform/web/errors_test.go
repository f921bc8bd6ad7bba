package web

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
)

func TestFromError_MapsTaxonomy(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("collection 1: %w", catalog.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("user 2: %w", catalog.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("grant exists: %w", catalog.ErrConflict), http.StatusConflict},
		{fmt.Errorf("name required: %w", catalog.ErrInvalid), http.StatusUnprocessableEntity},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		got := FromError(tc.err, "boom")
		if got.Code != tc.code {
			t.Fatalf("FromError(%v) code = %d, want %d", tc.err, got.Code, tc.code)
		}
	}
}
