package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newCloudflareTestProvider(t *testing.T, handler http.HandlerFunc) *CloudflareProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	p := NewCloudflareProvider("acc-123", "secret-token", time.Second)
	p.baseURL = server.URL
	return p
}

func TestCloudflareEmbedBatch(t *testing.T) {
	p := newCloudflareTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		if !strings.HasSuffix(r.URL.Path, cloudflareEmbeddingModel) {
			t.Errorf("unexpected model path %q", r.URL.Path)
		}
		var body cloudflareEmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(body.Text) != 2 || body.Text[0] != "first" {
			t.Errorf("unexpected texts: %+v", body.Text)
		}
		w.Write([]byte(`{"result":{"data":[[0.1,0.2],[0.3,0.4]]},"success":true}`))
	})

	vectors, err := p.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vectors) != 2 || vectors[1][0] != 0.3 {
		t.Errorf("unexpected vectors: %+v", vectors)
	}
}

func TestCloudflareEmbedBatchCountMismatch(t *testing.T) {
	p := newCloudflareTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"data":[[0.1]]},"success":true}`))
	})

	_, err := p.EmbedBatch(context.Background(), []string{"one", "two"})
	if err == nil {
		t.Fatal("expected an error when the embedding count does not match the input count")
	}
}

func TestCloudflareGenerate(t *testing.T) {
	p := newCloudflareTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, cloudflareChatModel) {
			t.Errorf("unexpected model path %q", r.URL.Path)
		}
		var body cloudflareChatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != RoleSystem {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}
		w.Write([]byte(`{"result":{"response":"generated text"},"success":true}`))
	})

	answer, err := p.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "you are helpful"},
		{Role: RoleUser, Content: "hello"},
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if answer != "generated text" {
		t.Errorf("unexpected answer %q", answer)
	}
}

func TestCloudflareErrorStatus(t *testing.T) {
	p := newCloudflareTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"success":false,"errors":[{"message":"invalid token"}]}`, http.StatusUnauthorized)
	})

	_, err := p.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected an error from a 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error must surface the status code, got %v", err)
	}
}
