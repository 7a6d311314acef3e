package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestChatClientSendsVisionPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("missing bearer key")
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"content":"  {\"claimant\":\"A\"}  "}}]}`))
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "k", "glm-4v-plus", true)
	text, err := c.Send(context.Background(), "analyze", &Attachment{Filename: "a.jpg", MimeType: "image/jpeg", Data: []byte{1, 2}})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if text != `{"claimant":"A"}` {
		t.Fatalf("unexpected text %q", text)
	}

	msgs := got["messages"].([]any)
	content := msgs[0].(map[string]any)["content"].([]any)
	if len(content) != 2 || content[1].(map[string]any)["type"] != "image_url" {
		t.Fatalf("image not attached: %v", content)
	}
}

func TestChatClientInlinesExtractedText(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "k", "deepseek-chat", false)
	_, err := c.Send(context.Background(), "analyze", &Attachment{Filename: "a.pdf", MimeType: "application/pdf", Text: "Patta No. 42"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	content := got["messages"].([]any)[0].(map[string]any)["content"].(string)
	if !strings.Contains(content, "Patta No. 42") {
		t.Fatalf("extracted text not forwarded: %q", content)
	}
}

func TestChatClientFailures(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"server error":  {http.StatusInternalServerError, `{}`},
		"malformed":     {http.StatusOK, `not json`},
		"no choices":    {http.StatusOK, `{"choices":[]}`},
		"null content":  {http.StatusOK, `{"choices":[{"message":{"content":null}}]}`},
		"blank content": {http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`},
	}
	for name, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(tc.body))
		}))
		_, err := NewChatClient(srv.URL, "k", "m", false).Send(context.Background(), "p", nil)
		srv.Close()
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestGeminiClient(t *testing.T) {
	var path, key, queryKey string
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, key, queryKey = r.URL.Path, r.Header.Get("x-goog-api-key"), r.URL.Query().Get("key")
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"part one, "},{"text":"part two"}]}}]}`))
	}))
	defer srv.Close()

	g, err := NewGeminiClient("secret", "models/gemini-2.0-flash", srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	text, err := g.Send(context.Background(), "prompt", &Attachment{MimeType: "application/pdf", Data: []byte("%PDF")})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if text != "part one, part two" {
		t.Fatalf("unexpected text %q", text)
	}
	if path != "/models/gemini-2.0-flash:generateContent" || key != "secret" {
		t.Fatalf("unexpected request %s key=%s", path, key)
	}
	if queryKey != "" {
		t.Fatalf("api key must not travel in the query string")
	}
	parts := got.Contents[0].Parts
	if len(parts) != 2 || parts[1].InlineData == nil || parts[1].InlineData.MimeType != "application/pdf" {
		t.Fatalf("document not inlined: %+v", parts)
	}

	if _, err := NewGeminiClient(" ", "m", ""); err == nil {
		t.Fatalf("blank key should be rejected")
	}
}

func TestGeminiClientReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	g, _ := NewGeminiClient("k", "m", srv.URL)
	if _, err := g.Send(context.Background(), "p", nil); err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestGeminiTransportErrorOmitsKey(t *testing.T) {
	g, _ := NewGeminiClient("SUPERSECRETKEY", "gemini-2.0-flash", "http://127.0.0.1:1")
	_, err := g.Send(context.Background(), "p", nil)
	if err == nil {
		t.Fatalf("expected connection error")
	}
	if strings.Contains(err.Error(), "SUPERSECRETKEY") || strings.Contains(err.Error(), "127.0.0.1:1/models") {
		t.Fatalf("transport error leaks the endpoint: %v", err)
	}
}

func TestFailureNote(t *testing.T) {
	leaky := &url.Error{
		Op:  "Post",
		URL: "https://generativelanguage.googleapis.com/v1beta/models/m:generateContent?key=SUPERSECRETKEY",
		Err: errors.New("connection refused"),
	}
	cases := map[string]struct {
		err  error
		want string
	}{
		"nil":         {nil, ""},
		"plain":       {errors.New("quota exceeded"), "quota exceeded"},
		"wrapped url": {fmt.Errorf("chain: %w", leaky), "connection refused"},
		"joined url":  {errors.Join(errors.New("down"), leaky), "down"},
		"deadline":    {fmt.Errorf("send: %w", context.DeadlineExceeded), "analyzer unavailable: timeout"},
		"cancelled":   {context.Canceled, "analyzer unavailable: request cancelled"},
		"no provider": {ErrNoProvider, "analyzer unavailable"},
	}
	for name, tc := range cases {
		note := FailureNote(tc.err)
		if strings.Contains(note, "SUPERSECRETKEY") || strings.Contains(note, "googleapis.com") {
			t.Fatalf("%s: note leaks the endpoint: %q", name, note)
		}
		if !strings.Contains(note, tc.want) {
			t.Fatalf("%s: note %q should contain %q", name, note, tc.want)
		}
	}
}

type stubAnalyzer struct {
	text  string
	err   error
	calls int
}

func (s *stubAnalyzer) Send(context.Context, string, *Attachment) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestChainFallsBack(t *testing.T) {
	first := &stubAnalyzer{err: errors.New("down")}
	second := &stubAnalyzer{text: "ok"}
	third := &stubAnalyzer{text: "unused"}

	text, err := Chain{first, second, third}.Send(context.Background(), "p", nil)
	if err != nil || text != "ok" {
		t.Fatalf("unexpected result %q, %v", text, err)
	}
	if third.calls != 0 {
		t.Fatalf("chain should stop at the first success")
	}

	_, err = Chain{first, &stubAnalyzer{err: errors.New("also down")}}.Send(context.Background(), "p", nil)
	if err == nil || !strings.Contains(err.Error(), "down") || !strings.Contains(err.Error(), "also down") {
		t.Fatalf("expected joined errors, got %v", err)
	}

	if _, err := (Chain{}).Send(context.Background(), "p", nil); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("empty chain should report no provider, got %v", err)
	}
	if _, err := (Disabled{}).Send(context.Background(), "p", nil); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("disabled analyzer should report no provider, got %v", err)
	}
}

func TestChainStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	second := &stubAnalyzer{text: "ok"}
	_, err := Chain{&stubAnalyzer{err: ctx.Err()}, second}.Send(ctx, "p", nil)
	if err == nil || second.calls != 0 {
		t.Fatalf("chain should not continue after the deadline")
	}
}
