package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/99minutos/membership-site/internal/api/middleware"
)

func TestHomeHandler_Index(t *testing.T) {
	e := newTestEcho(t)
	h := NewHomeHandler()

	rec := httptest.NewRecorder()
	if err := h.Index(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Welcome") {
		t.Fatalf("expected anonymous home page, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	middleware.WithClaim(c, "sid", memberClaim)
	if err := h.Index(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Hello, Ann Lee!") {
		t.Fatalf("expected greeting for the member")
	}
}

func TestHomeHandler_Members(t *testing.T) {
	e := newTestEcho(t)

	for i, img := range memberImages {
		h := NewHomeHandler()
		h.pick = func(n int) int {
			if n != len(memberImages) {
				t.Fatalf("expected pick over %d images, got %d", len(memberImages), n)
			}
			return i
		}

		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/members", nil), rec)
		middleware.WithClaim(c, "sid", memberClaim)

		if err := h.Members(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if !strings.Contains(rec.Body.String(), "/static/img/"+img) {
			t.Fatalf("expected image %s", img)
		}
	}
}
