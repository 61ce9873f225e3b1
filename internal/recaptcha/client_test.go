package recaptcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestVerify_EmptyTokenShortCircuits(t *testing.T) {
	var called int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&called, 1)
	}))
	defer srv.Close()

	c := New("secret", time.Second).WithEndpoint(srv.URL)
	res, err := c.Verify(context.Background(), "", "203.0.113.7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Known {
		t.Fatalf("empty token must yield an unknown result, got %+v", res)
	}
	if atomic.LoadInt32(&called) != 0 {
		t.Fatalf("no network call expected for an empty token")
	}
}

func TestVerify_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("secret"); got != "s3cr3t" {
			t.Errorf("secret = %q", got)
		}
		if got := r.PostForm.Get("response"); got != "tok-1" {
			t.Errorf("response = %q", got)
		}
		if got := r.PostForm.Get("remoteip"); got != "203.0.113.7" {
			t.Errorf("remoteip = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"score":0.9,"action":"contact"}`))
	}))
	defer srv.Close()

	c := New("s3cr3t", time.Second).WithEndpoint(srv.URL)
	res, err := c.Verify(context.Background(), "tok-1", "203.0.113.7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Known || res.Score != 0.9 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestVerify_RejectedTokenIsZeroScoreNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	c := New("secret", time.Second).WithEndpoint(srv.URL)
	res, err := c.Verify(context.Background(), "forged", "203.0.113.7")
	if err != nil {
		t.Fatalf("a rejected token is a verdict, not an error: %v", err)
	}
	if !res.Known || res.Score != 0 {
		t.Fatalf("expected known zero score, got %+v", res)
	}
}

func TestVerify_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http_500", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed_json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":`))
		}},
		{"score_out_of_range", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":true,"score":1.5}`))
		}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			c := New("secret", time.Second).WithEndpoint(srv.URL)
			if _, err := c.Verify(context.Background(), "tok", "203.0.113.7"); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestVerify_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New("secret", 20*time.Millisecond).WithEndpoint(srv.URL)
	if _, err := c.Verify(context.Background(), "tok", "203.0.113.7"); err == nil {
		t.Fatalf("expected a timeout error")
	}
}
