package chatgpt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubChatClient struct {
	resp ChatCompletionResponse
	err  error
	last ChatCompletionRequest
}

func (s *stubChatClient) CreateChatCompletion(_ context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	s.last = req
	return s.resp, s.err
}

func TestGeneratorReturnsFirstChoice(t *testing.T) {
	stub := &stubChatClient{}
	stub.resp.Choices = append(stub.resp.Choices, struct {
		Message Message `json:"message"`
	}{Message: Message{Role: "assistant", Content: "  {\"summary\":\"ok\"}\n"}})

	gen := NewGenerator(stub, "gpt-test", 0.3)
	out, err := gen.Generate(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, `{"summary":"ok"}`, out)
	require.Equal(t, "gpt-test", stub.last.Model)
	require.Equal(t, []Message{{Role: "user", Content: "hello"}}, stub.last.Messages)
}

func TestGeneratorErrors(t *testing.T) {
	_, err := NewGenerator(&stubChatClient{}, "m", 0).Generate(context.Background(), "p")
	require.Error(t, err)

	_, err = NewGenerator(&stubChatClient{err: errors.New("down")}, "m", 0).Generate(context.Background(), "p")
	require.EqualError(t, err, "down")
}

func TestClientCreateChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient("key", server.URL)
	require.NoError(t, err)
	out, err := NewGenerator(client, "m", 0).Generate(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, "hi", out)
}

func TestClientNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient("key", server.URL)
	require.NoError(t, err)
	_, err = client.CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	require.ErrorContains(t, err, "status=429")
}
