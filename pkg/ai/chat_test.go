package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChatClient_Complete_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected authorization %q", got)
		}
		var payload ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" {
			t.Fatalf("unexpected messages %+v", payload.Messages)
		}
		if payload.ResponseFormat == nil || payload.ResponseFormat.Type != "json_object" {
			t.Fatalf("expected json_object response format")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"score\":7}"}}]}`))
	}))
	defer ts.Close()

	client := NewChatClient(ChatConfig{BaseURL: ts.URL + "/v1/", APIKey: "test-key", Model: "m", Timeout: time.Second})
	out, err := client.Complete(context.Background(), Prompt{
		System: "sys",
		User:   "user",
		Schema: &Schema{Type: TypeObject},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"score":7}` {
		t.Fatalf("unexpected content %s", out)
	}
}

func TestChatClient_Complete_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer ts.Close()

	client := NewChatClient(ChatConfig{BaseURL: ts.URL, APIKey: "k"})
	_, err := client.Complete(context.Background(), Prompt{User: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
	if StatusCode(err) != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d (%v)", StatusCode(err), err)
	}
	se := err.(*StatusError)
	if se.Message != "slow down" || se.Type != "rate_limit" {
		t.Fatalf("unexpected decoded error %+v", se)
	}
}

func TestChatClient_Complete_PlainBodyError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer ts.Close()

	client := NewChatClient(ChatConfig{BaseURL: ts.URL, APIKey: "k"})
	_, err := client.Complete(context.Background(), Prompt{User: "hi"})
	if StatusCode(err) != http.StatusBadGateway {
		t.Fatalf("expected 502, got %v", err)
	}
	if err.(*StatusError).Message != "upstream broke" {
		t.Fatalf("unexpected message %q", err.(*StatusError).Message)
	}
}

func TestChatClient_Complete_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	client := NewChatClient(ChatConfig{BaseURL: ts.URL, APIKey: "k"})
	if _, err := client.Complete(context.Background(), Prompt{User: "hi"}); err != ErrEmptyResponse {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestToGenaiSchema(t *testing.T) {
	max := 10.0
	s := &Schema{
		Type:     TypeObject,
		Required: []string{"score"},
		Properties: map[string]*Schema{
			"score": {Type: TypeNumber, Maximum: &max},
			"items": {Type: TypeArray, Items: &Schema{Type: TypeString, Enum: []string{"a"}}},
		},
	}
	out := toGenaiSchema(s)
	if out.Properties["score"].Maximum == nil || *out.Properties["score"].Maximum != 10 {
		t.Fatalf("maximum not carried over")
	}
	if out.Properties["items"].Items == nil || len(out.Properties["items"].Items.Enum) != 1 {
		t.Fatalf("array items not carried over")
	}
	if len(out.Required) != 1 {
		t.Fatalf("required not carried over")
	}
}
