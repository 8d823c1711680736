package netx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type echo struct {
	URL string `json:"url"`
}

func TestPostJSON(t *testing.T) {
	t.Run("success decodes body", func(t *testing.T) {
		var gotMethod, gotCT string
		var gotBody echo

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = io.WriteString(w, `{"url":"https://back.example"}`)
		}))
		defer ts.Close()

		var out echo
		err := PostJSON(context.Background(), ts.Client(), ts.URL, echo{URL: "https://example.com"}, &out)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotMethod != http.MethodPost {
			t.Fatalf("method = %q, want POST", gotMethod)
		}
		if gotCT != "application/json" {
			t.Fatalf("Content-Type = %q, want application/json", gotCT)
		}
		if gotBody.URL != "https://example.com" {
			t.Fatalf("request body url = %q", gotBody.URL)
		}
		if out.URL != "https://back.example" {
			t.Fatalf("decoded url = %q", out.URL)
		}
	})

	t.Run("non-2xx -> StatusError", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, "plan too low")
		}))
		defer ts.Close()

		err := PostJSON(context.Background(), ts.Client(), ts.URL, echo{}, nil)
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("expected *StatusError, got %v", err)
		}
		if se.Code != http.StatusForbidden || se.Body != "plan too low" {
			t.Fatalf("unexpected status error: %+v", se)
		}
	})

	t.Run("malformed body -> error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "{broken")
		}))
		defer ts.Close()

		var out echo
		if err := PostJSON(context.Background(), ts.Client(), ts.URL, echo{}, &out); err == nil {
			t.Fatal("expected decode error")
		}
	})

	t.Run("timeout -> error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer ts.Close()

		c := &http.Client{Timeout: 20 * time.Millisecond}
		if err := PostJSON(context.Background(), c, ts.URL, echo{}, nil); err == nil {
			t.Fatal("expected timeout error")
		}
	})

	t.Run("bad url -> error", func(t *testing.T) {
		if err := PostJSON(context.Background(), http.DefaultClient, "http://[::1]:namedport", echo{}, nil); err == nil {
			t.Fatal("expected error")
		}
	})
}
