package serviceImp

import (
	"context"
	"strings"

	"cropdoc/entities"
	"cropdoc/pkg/ai"
	"cropdoc/pkg/apperror"
	"cropdoc/pkg/chat/repository"
	"cropdoc/pkg/chat/service"
	kbService "cropdoc/pkg/kb/service"
	"cropdoc/pkg/logger"
)

const (
	replayLimit  = 10
	persistLimit = 20
	maxSessionID = 128

	msgChatFailed = "Chat failed. Please try again."
)

type Svc struct {
	llm    ai.Client
	store  repository.ChatHistoryRepository
	model  string
	crops  []string
	refTxt string
}

// New builds the chat service. store may be nil for stateless chat.
func New(kb kbService.KBService, llm ai.Client, store repository.ChatHistoryRepository, model string) service.ChatService {
	crops := make([]string, 0, len(kb.Crops()))
	for _, c := range kb.Crops() {
		crops = append(crops, c.Name)
	}
	return &Svc{llm: llm, store: store, model: model, crops: crops, refTxt: kb.ReferenceText()}
}

func (s *Svc) Reply(ctx context.Context, in service.ChatInput) (string, error) {
	history, err := validate(in)
	if err != nil {
		return "", err
	}
	log := logger.FromContext(ctx)
	sessionID := strings.TrimSpace(in.SessionID)

	prior := s.load(ctx, sessionID)
	replay := tail(prior, replayLimit)

	msgs := make([]ai.Message, 0, len(replay)+len(history))
	for _, m := range append(append([]entities.ChatMessage{}, replay...), history...) {
		msgs = append(msgs, ai.Message{Role: m.Role, Content: m.Content})
	}

	text, err := s.llm.Complete(ctx, ai.Request{
		Model:    s.model,
		System:   systemPrompt(in.Language, s.crops, s.refTxt),
		Messages: msgs,
	})
	if err != nil {
		log.Error("[chat] gateway call failed", "error", err)
		return "", ai.AsAppError(err, msgChatFailed)
	}
	reply := scrubPersona(text)
	if reply == "" {
		return "", apperror.Internal(msgChatFailed, ai.ErrEmptyReply)
	}

	if s.store != nil && sessionID != "" {
		all := make([]entities.ChatMessage, 0, len(prior)+len(history)+1)
		all = append(all, prior...)
		all = append(all, history...)
		all = append(all, entities.ChatMessage{Role: entities.RoleAssistant, Content: reply})
		if err := s.store.Save(ctx, sessionID, tail(all, persistLimit)); err != nil {
			log.Warn("[chat] history save failed", "session", sessionID, "error", err)
		}
	}
	return reply, nil
}

// load never fails the request; a broken store reads as empty history.
func (s *Svc) load(ctx context.Context, sessionID string) []entities.ChatMessage {
	if s.store == nil || sessionID == "" {
		return nil
	}
	prior, err := s.store.Load(ctx, sessionID)
	if err != nil {
		logger.FromContext(ctx).Warn("[chat] history load failed", "session", sessionID, "error", err)
		return nil
	}
	return prior
}

func validate(in service.ChatInput) ([]entities.ChatMessage, error) {
	if len(in.Messages) == 0 {
		return nil, apperror.InvalidInput("Messages array is required")
	}
	if len(strings.TrimSpace(in.SessionID)) > maxSessionID {
		return nil, apperror.InvalidInput("Session id is too long")
	}
	out := make([]entities.ChatMessage, 0, len(in.Messages))
	for _, m := range in.Messages {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != entities.RoleUser && role != entities.RoleAssistant {
			return nil, apperror.InvalidInput("Message role must be user or assistant")
		}
		if strings.TrimSpace(m.Content) == "" {
			return nil, apperror.InvalidInput("Message content must not be empty")
		}
		out = append(out, entities.ChatMessage{Role: role, Content: m.Content})
	}
	return out, nil
}

func tail(msgs []entities.ChatMessage, n int) []entities.ChatMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}
