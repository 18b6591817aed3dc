package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inspitereno-lang/entebhoomi/internal/session"
)

func TestDoAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	sess := session.New("")
	if err := sess.SetToken("tok-abc", session.TokenRegistered); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	client := New(srv.URL, sess)
	if _, err := client.Do(context.Background(), RequestOpts{Method: http.MethodGet, Path: "/cart"}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	if gotAuth != "Bearer tok-abc" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-abc")
	}
}

func TestDoSkipsBearerWhenLoggedOut(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	client := New(srv.URL, session.New(""))
	if _, err := client.Do(context.Background(), RequestOpts{Method: http.MethodGet, Path: "/products"}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestUnauthorizedInvalidatesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success": false, "msg": "invalid token"}`))
	}))
	defer srv.Close()

	sess := session.New("")
	if err := sess.SetToken("stale", session.TokenRegistered); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	reloads := 0
	sess.OnReload(func() { reloads++ })

	client := New(srv.URL, sess)
	_, err := client.FetchCart(context.Background())
	if err == nil {
		t.Fatal("expected error from 401")
	}
	if !IsUnauthorized(err) {
		t.Errorf("IsUnauthorized(%v) = false, want true", err)
	}

	if sess.Token() != "" {
		t.Errorf("token = %q, want cleared", sess.Token())
	}
	if reloads != 1 {
		t.Errorf("reload hook fired %d times, want 1", reloads)
	}
}

func TestEnvelopeFailureBecomesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "cart is empty"}`))
	}))
	defer srv.Close()

	sess := session.New("")
	if err := sess.SetToken("tok", session.TokenRegistered); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	client := New(srv.URL, sess)
	_, err := client.FetchCart(context.Background())

	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("err = %T, want *Error", err)
	}
	if apiErr.Msg != "cart is empty" {
		t.Errorf("msg = %q, want %q", apiErr.Msg, "cart is empty")
	}
}

func TestNonOKStatusCarriesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success": false, "msg": "invalid product id"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, session.New(""))
	err := client.AddToCart(context.Background(), "nope")

	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("err = %T, want *Error", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apiErr.Status)
	}
	if apiErr.Msg != "invalid product id" {
		t.Errorf("msg = %q, want %q", apiErr.Msg, "invalid product id")
	}
}
