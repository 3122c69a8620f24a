package testutil

import (
	"net/http"
	"strings"
	"testing"
)

func TestLocalRequest(t *testing.T) {
	req := LocalRequest(http.MethodPost, "/debug/scene", strings.NewReader("{}"))

	if req.RemoteAddr != "127.0.0.1:12345" {
		t.Errorf("RemoteAddr = %s, want loopback", req.RemoteAddr)
	}
	if req.Method != http.MethodPost || req.URL.Path != "/debug/scene" {
		t.Errorf("unexpected request %s %s", req.Method, req.URL.Path)
	}
}

func TestServe(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := Serve(h, LocalRequest(http.MethodGet, "/", nil))
	AssertStatusCode(t, rec.Code, http.StatusTeapot)
}
