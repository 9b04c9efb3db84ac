package chat

import "context"

// Message roles
const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Assistant is the conversational AI collaborator. It receives the full
// prior transcript, the new message and a lightweight context tag (the
// current view name). Implementations return a graceful fallback string on
// failure instead of propagating errors.
type Assistant interface {
	Chat(ctx context.Context, transcript []Message, message, contextTag string) string
}
