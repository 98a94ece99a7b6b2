package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
)

func TestLinkedInPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ugcPosts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Error("missing bearer token")
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["author"] != "urn:li:person:x" {
			t.Errorf("author = %v", payload["author"])
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"urn:li:share:42"}`))
	}))
	defer srv.Close()

	c := NewLinkedInClient(srv.URL, "tok", "urn:li:person:x", time.Second)
	id, err := c.Post(context.Background(), "hello network")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if id != "urn:li:share:42" {
		t.Errorf("post id = %s", id)
	}
}

func TestLinkedInErrorKinds(t *testing.T) {
	cases := []struct {
		status int
		want   apperrors.ErrorCode
	}{
		{http.StatusUnauthorized, apperrors.ErrCodeAuthFailed},
		{http.StatusForbidden, apperrors.ErrCodeForbidden},
		{http.StatusTooManyRequests, apperrors.ErrCodeRateLimited},
		{http.StatusBadGateway, apperrors.ErrCodeTransport},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		c := NewLinkedInClient(srv.URL, "tok", "urn:li:person:x", time.Second)
		_, err := c.Post(context.Background(), "x")
		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		if got := apperrors.GetCode(err); got != tc.want {
			t.Errorf("status %d: code = %s, want %s", tc.status, got, tc.want)
		}
		srv.Close()
	}
}

func TestLinkedInConfigured(t *testing.T) {
	if NewLinkedInClient("", "", "", time.Second).Configured() {
		t.Error("empty credentials should not be configured")
	}
	if !NewLinkedInClient("", "tok", "urn", time.Second).Configured() {
		t.Error("token + author should be configured")
	}
}
