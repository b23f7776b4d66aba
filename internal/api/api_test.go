package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alphabot-ai/flicker/internal/apperr"
)

func TestStatusForKind(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.InvalidInput:       http.StatusBadRequest,
		apperr.Unauthenticated:    http.StatusUnauthorized,
		apperr.Forbidden:          http.StatusForbidden,
		apperr.NotFound:           http.StatusNotFound,
		apperr.Conflict:           http.StatusConflict,
		apperr.PayloadTooLarge:    http.StatusRequestEntityTooLarge,
		apperr.UnsupportedMedia:   http.StatusUnsupportedMediaType,
		apperr.RateLimited:        http.StatusTooManyRequests,
		apperr.StorageUnavailable: http.StatusServiceUnavailable,
		apperr.Internal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := statusForKind(kind); got != want {
			t.Errorf("statusForKind(%s) = %d, want %d", kind, got, want)
		}
	}
}

func TestParsePaging(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/feed?cursor=abc&limit=10", nil)
	cursor, limit := parsePaging(r)
	if cursor != "abc" || limit != 10 {
		t.Fatalf("got cursor=%q limit=%d, want abc/10", cursor, limit)
	}
}

func TestParsePaging_Defaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/feed", nil)
	cursor, limit := parsePaging(r)
	if cursor != "" || limit != 0 {
		t.Fatalf("got cursor=%q limit=%d, want empty/0", cursor, limit)
	}
}

func TestStatusBucket(t *testing.T) {
	cases := map[int]string{200: "2xx", 301: "3xx", 404: "4xx", 500: "5xx"}
	for status, want := range cases {
		if got := statusBucket(status); got != want {
			t.Errorf("statusBucket(%d) = %s, want %s", status, got, want)
		}
	}
}
