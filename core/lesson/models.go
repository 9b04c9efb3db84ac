package lesson

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
)

// JSON field names mirror the persisted browser-era shape.
type Lesson struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Subject   string    `json:"subject"`
	Author    string    `json:"author"`
	AuthorID  string    `json:"authorId"`
	Thumbnail string    `json:"thumbnail"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	// video reference: a remote URL or a local blob reference, the flag
	// distinguishing which
	VideoURL     string `json:"videoUrl,omitempty"`
	IsLocalVideo bool   `json:"isLocalVideo,omitempty"`
}

// NewLesson is the draft a teacher fills in before the preview step.
// A thumbnail is mandatory, as the original upload form enforced.
type NewLesson struct {
	Title        string `json:"title" validate:"required"`
	Subject      string `json:"subject" validate:"required"`
	Thumbnail    string `json:"thumbnail" validate:"required"`
	Content      string `json:"content"`
	VideoURL     string `json:"video_url"`
	IsLocalVideo bool   `json:"is_local_video"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	nl.Subject = core.CleanString(nl.Subject)
	return validate.Struct(nl)
}

// Pending builds the lesson shown on the preview screen. It is not persisted
// until explicitly published.
func (nl NewLesson) Pending(author user.User) Lesson {
	return Lesson{
		Title:        nl.Title,
		Subject:      nl.Subject,
		Author:       author.Name,
		AuthorID:     author.ID,
		Thumbnail:    nl.Thumbnail,
		Content:      nl.Content,
		CreatedAt:    time.Now().UTC(),
		VideoURL:     nl.VideoURL,
		IsLocalVideo: nl.IsLocalVideo,
	}
}
