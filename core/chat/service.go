package chat

import (
	"context"
	"sync"
)

// Service keeps the session-scoped, append-only chat transcript and relays
// each user message — with the full prior transcript — to the assistant.
// The transcript is never persisted; a reload starts empty.
type Service struct {
	mu         sync.Mutex
	assistant  Assistant
	transcript []Message
	epoch      int // bumped by Reset; late replies from an old epoch are dropped
}

func NewService(assistant Assistant) *Service {
	return &Service{assistant: assistant}
}

// Send appends the user message, forwards it with the prior transcript and
// the current view tag, and appends the reply. A reply that arrives after
// Reset was called is dropped rather than applied to the new transcript.
func (svc *Service) Send(ctx context.Context, text, contextTag string) Message {
	svc.mu.Lock()
	prior := make([]Message, len(svc.transcript))
	copy(prior, svc.transcript)
	svc.transcript = append(svc.transcript, Message{Role: RoleUser, Text: text})
	epoch := svc.epoch
	svc.mu.Unlock()

	replyText := svc.assistant.Chat(ctx, prior, text, contextTag)
	reply := Message{Role: RoleModel, Text: replyText}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.epoch == epoch {
		svc.transcript = append(svc.transcript, reply)
	}
	return reply
}

func (svc *Service) Transcript() []Message {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]Message, len(svc.transcript))
	copy(out, svc.transcript)
	return out
}

// Reset clears the transcript, e.g. on logout.
func (svc *Service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.transcript = nil
	svc.epoch++
}
