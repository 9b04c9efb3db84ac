package contact

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
)

var (
	ErrNotFound       = errors.New("message not found")
	ErrAlreadyReplied = errors.New("message was already replied to")
)

// Service holds the contact messages, newest first, persisted in full under
// core.KeyMessages (there is no seed subset for messages).
type Service struct {
	mu       sync.RWMutex
	store    core.Store
	messages []Message
}

func NewService(store core.Store) *Service {
	svc := &Service{store: store}
	var msgs []Message
	if ok, err := store.Load(core.KeyMessages, &msgs); err == nil && ok {
		svc.messages = msgs
	}
	return svc
}

func (svc *Service) persist() error {
	return svc.store.Save(core.KeyMessages, svc.messages)
}

// Create snapshots the sender identity into a new message and persists
// synchronously.
func (svc *Service) Create(sender user.User, nm NewMessage) (Message, error) {
	msg := Message{
		ID:          "msg-" + uuid.NewString(),
		SenderID:    sender.ID,
		SenderName:  sender.Name,
		SenderEmail: sender.Email,
		Subject:     nm.Subject,
		Content:     nm.Content,
		CreatedAt:   time.Now().UTC(),
		Status:      StatusNew,
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.messages = append([]Message{msg}, svc.messages...)
	if err := svc.persist(); err != nil {
		svc.messages = svc.messages[1:]
		return Message{}, err
	}
	return msg, nil
}

// QueryFor returns the messages visible to usr: staff see everything,
// everyone else only their own.
func (svc *Service) QueryFor(usr user.User) []Message {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	out := make([]Message, 0, len(svc.messages))
	for _, msg := range svc.messages {
		if usr.IsStaff() || msg.SenderID == usr.ID {
			out = append(out, msg)
		}
	}
	return out
}

// Reply appends reply content to a message and flips its status. A message
// takes exactly one reply.
func (svc *Service) Reply(id, content string) (Message, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	for i, msg := range svc.messages {
		if msg.ID != id {
			continue
		}
		if msg.Status == StatusReplied {
			return Message{}, ErrAlreadyReplied
		}
		msg.ReplyContent = content
		msg.RepliedAt = time.Now().UTC()
		msg.Status = StatusReplied

		prev := svc.messages[i]
		svc.messages[i] = msg
		if err := svc.persist(); err != nil {
			svc.messages[i] = prev
			return Message{}, err
		}
		return msg, nil
	}
	return Message{}, ErrNotFound
}
