package appraisal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAppraise(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/appraise" {
			t.Errorf("path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer key-1" {
			t.Errorf("authorization %q", auth)
		}

		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "今天好开心" {
			t.Errorf("text %q", req.Text)
		}

		_, _ = w.Write([]byte(`{"pleasure":0.4,"arousal":0.1,"dominance":0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key-1")
	impulse, err := client.Appraise(context.Background(), "今天好开心")
	if err != nil {
		t.Fatalf("Appraise error: %v", err)
	}
	if impulse.Pleasure != 0.4 || impulse.Arousal != 0.1 || impulse.Dominance != 0 {
		t.Fatalf("unexpected impulse: %+v", impulse)
	}
}

func TestAppraiseServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	if _, err := client.Appraise(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for bad status")
	}
}

func TestAppraiseMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewClient("", "")
	if _, err := client.Appraise(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
