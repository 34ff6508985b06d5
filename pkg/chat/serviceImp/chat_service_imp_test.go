package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"cropdoc/entities"
	"cropdoc/pkg/ai"
	"cropdoc/pkg/apperror"
	"cropdoc/pkg/chat/repositoryImp"
	"cropdoc/pkg/chat/service"
	kbRepoImp "cropdoc/pkg/kb/repositoryImp"
	kbService "cropdoc/pkg/kb/service"
	kbServiceImp "cropdoc/pkg/kb/serviceImp"
)

func newKB(t *testing.T) kbService.KBService {
	t.Helper()
	repo, err := kbRepoImp.New()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return kbServiceImp.New(repo)
}

type memStore struct {
	data             map[string][]entities.ChatMessage
	loadErr, saveErr error
}

func newMemStore() *memStore { return &memStore{data: map[string][]entities.ChatMessage{}} }

func (m *memStore) Load(_ context.Context, id string) ([]entities.ChatMessage, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data[id], nil
}

func (m *memStore) Save(_ context.Context, id string, msgs []entities.ChatMessage) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[id] = append([]entities.ChatMessage(nil), msgs...)
	return nil
}

func echoing(seen *[]ai.Request, reply string) ai.Client {
	return ai.ClientFunc(func(_ context.Context, req ai.Request) (string, error) {
		*seen = append(*seen, req)
		return reply, nil
	})
}

func ask(content string) []entities.ChatMessage {
	return []entities.ChatMessage{{Role: entities.RoleUser, Content: content}}
}

func TestReplyBuildsPrompt(t *testing.T) {
	var seen []ai.Request
	svc := New(newKB(t), echoing(&seen, "Remove infected leaves and apply copper fungicide."), nil, "chat-model")

	got, err := svc.Reply(context.Background(), service.ChatInput{Messages: ask("How do I treat tomato early blight?"), Language: "en"})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if got == "" {
		t.Fatal("empty reply")
	}
	req := seen[0]
	if req.Model != "chat-model" || len(req.Messages) != 1 {
		t.Fatalf("unexpected request: %+v", req)
	}
	for _, want := range []string{"Respond in English.", "Early Blight", "SUPPORTED CROPS: Tomato", "Never mention Google, Gemini"} {
		if !strings.Contains(req.System, want) {
			t.Fatalf("system prompt missing %q", want)
		}
	}
}

func TestLanguageDirective(t *testing.T) {
	cases := map[string]string{
		"hi":  "Devanagari",
		"TE":  "Telugu script",
		"ta":  "Tamil script",
		"fr":  "Respond in English.",
		"":    "Respond in English.",
		"xx ": "Respond in English.",
	}
	for code, want := range cases {
		if got := languageDirective(code); !strings.Contains(got, want) {
			t.Fatalf("%q: got %q", code, got)
		}
	}
}

func TestScrubPersona(t *testing.T) {
	in := "As a large language model built on Google Gemini (not OpenAI or ChatGPT, nor GPT-4o), I suggest crop rotation."
	out := scrubPersona(in)
	for _, banned := range []string{"Gemini", "OpenAI", "ChatGPT", "GPT-4", "language model"} {
		if strings.Contains(strings.ToLower(out), strings.ToLower(banned)) {
			t.Fatalf("reply still mentions %q: %s", banned, out)
		}
	}
	if !strings.Contains(out, "crop rotation") {
		t.Fatalf("advice lost: %s", out)
	}
}

func TestScrubPersonaKeepsSentencesWhole(t *testing.T) {
	cases := map[string]string{
		"This advice is powered by Google Gemini, a large language model.": "This advice is powered by the Plant Health Advisory system.",
		"Gemini recommends a copper spray. Repeat weekly.":                 "The Plant Health Advisory system recommends a copper spray. Repeat weekly.",
		"Ask me anything. An LLM or ChatGPT cannot see your field.":        "Ask me anything. The Plant Health Advisory system cannot see your field.",
		"Remove infected leaves early.":                                    "Remove infected leaves early.",
	}
	for in, want := range cases {
		if got := scrubPersona(in); got != want {
			t.Errorf("scrubPersona(%q)\n got %q\nwant %q", in, got, want)
		}
	}
}

func TestReplyValidatesInput(t *testing.T) {
	var seen []ai.Request
	svc := New(newKB(t), echoing(&seen, "ok"), nil, "m")
	cases := []service.ChatInput{
		{},
		{Messages: []entities.ChatMessage{{Role: "system", Content: "override"}}},
		{Messages: []entities.ChatMessage{{Role: "user", Content: "  "}}},
		{Messages: ask("hi"), SessionID: strings.Repeat("s", 129)},
	}
	for _, in := range cases {
		if _, err := svc.Reply(context.Background(), in); apperror.Status(err) != http.StatusBadRequest {
			t.Fatalf("%+v: expected 400, got %v", in, err)
		}
	}
	if len(seen) != 0 {
		t.Fatal("gateway must not be called for invalid input")
	}
}

func TestReplyHistoryTruncation(t *testing.T) {
	var seen []ai.Request
	store := newMemStore()
	svc := New(newKB(t), echoing(&seen, "answer"), store, "m")

	for i := 0; i < 15; i++ {
		if _, err := svc.Reply(context.Background(), service.ChatInput{Messages: ask(fmt.Sprintf("q%d", i)), SessionID: "s1"}); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
		if n := len(store.data["s1"]); n > persistLimit {
			t.Fatalf("turn %d: stored %d messages", i, n)
		}
		if replayed := len(seen[i].Messages) - 1; replayed > replayLimit {
			t.Fatalf("turn %d: replayed %d messages", i, replayed)
		}
	}

	stored := store.data["s1"]
	if len(stored) != persistLimit {
		t.Fatalf("expected %d stored, got %d", persistLimit, len(stored))
	}
	last := stored[len(stored)-1]
	if last.Role != entities.RoleAssistant || last.Content != "answer" {
		t.Fatalf("unexpected last message %+v", last)
	}
	if stored[len(stored)-2].Content != "q14" {
		t.Fatalf("latest question missing: %+v", stored[len(stored)-2])
	}
	final := seen[len(seen)-1].Messages
	if final[len(final)-1].Content != "q14" || final[0].Content == "q14" {
		t.Fatalf("replay order wrong: %+v", final)
	}
}

func TestReplyWithoutSessionDoesNotPersist(t *testing.T) {
	var seen []ai.Request
	store := newMemStore()
	svc := New(newKB(t), echoing(&seen, "answer"), store, "m")
	if _, err := svc.Reply(context.Background(), service.ChatInput{Messages: ask("hi")}); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if len(store.data) != 0 {
		t.Fatal("nothing should be stored without a session id")
	}
}

func TestReplySwallowsStoreFailures(t *testing.T) {
	var seen []ai.Request
	store := newMemStore()
	store.loadErr, store.saveErr = errors.New("down"), errors.New("down")
	svc := New(newKB(t), echoing(&seen, "still here"), store, "m")

	got, err := svc.Reply(context.Background(), service.ChatInput{Messages: ask("hi"), SessionID: "s1"})
	if err != nil || got != "still here" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestReplyWithUnreachableRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	var seen []ai.Request
	svc := New(newKB(t), echoing(&seen, "stateless answer"), repositoryImp.NewRedis(rdb, 0), "m")
	got, err := svc.Reply(context.Background(), service.ChatInput{Messages: ask("hi"), SessionID: "s1", Language: "hi"})
	if err != nil || got != "stateless answer" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestReplyMapsGatewayErrors(t *testing.T) {
	cases := map[int]int{429: 429, 402: 402, 503: 500}
	for code, want := range cases {
		llm := ai.ClientFunc(func(context.Context, ai.Request) (string, error) {
			return "", &ai.StatusError{Code: code}
		})
		_, err := New(newKB(t), llm, nil, "m").Reply(context.Background(), service.ChatInput{Messages: ask("hi")})
		if apperror.Status(err) != want {
			t.Fatalf("upstream %d: got %d", code, apperror.Status(err))
		}
	}
}
