package contact

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
)

// Message statuses
const (
	StatusNew     = "new"
	StatusReplied = "replied"
)

// Message is a support request. The sender identity is a snapshot taken at
// creation time; messages are never deleted, only replied to.
type Message struct {
	ID           string    `json:"id"`
	SenderID     string    `json:"senderId"`
	SenderName   string    `json:"senderName"`
	SenderEmail  string    `json:"senderEmail"`
	Subject      string    `json:"subject"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	Status       string    `json:"status"`
	ReplyContent string    `json:"replyContent,omitempty"`
	RepliedAt    time.Time `json:"repliedAt,omitempty"`
}

type NewMessage struct {
	Subject string `json:"subject" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.Subject = core.CleanString(nm.Subject)
	nm.Content = core.CleanString(nm.Content)
	return validate.Struct(nm)
}
