package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/chat"
)

func Test_chatApi(t *testing.T) {
	env := setup(t)
	token, _ := env.signUpStudent(t)
	env.ai.Reply = "Định lý Pytago: a² + b² = c²."

	t.Run("a fresh conversation is empty", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/chat", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var transcript []chat.Message
		decode(t, rec, &transcript)
		assert.Empty(t, transcript)
	})

	t.Run("send", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/chat", token, ChatRequest{
			Message: "Định lý Pytago là gì?",
			Context: "LESSONS",
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var reply chat.Message
		decode(t, rec, &reply)
		assert.Equal(t, chat.RoleModel, reply.Role)
		assert.Equal(t, env.ai.Reply, reply.Text)

		rec = env.do(t, http.MethodGet, "/v1/chat", token, nil)
		var transcript []chat.Message
		decode(t, rec, &transcript)
		assert.Len(t, transcript, 2)
		assert.Equal(t, chat.RoleUser, transcript[0].Role)
	})

	t.Run("an empty message is rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/chat", token, ChatRequest{Message: ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("conversations are per user", func(t *testing.T) {
		otherToken, _ := env.signUpTeacher(t)
		rec := env.do(t, http.MethodGet, "/v1/chat", otherToken, nil)
		var transcript []chat.Message
		decode(t, rec, &transcript)
		assert.Empty(t, transcript)
	})

	t.Run("navigation is refused while a reply is pending", func(t *testing.T) {
		env.ai.OnChat = func() {
			rec := env.do(t, http.MethodPost, "/v1/state/navigate", token, NavigateRequest{View: "LESSONS"})
			assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		}
		defer func() { env.ai.OnChat = nil }()

		rec := env.do(t, http.MethodPost, "/v1/chat", token, ChatRequest{Message: "còn đó không?"})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("reset", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/v1/chat", token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/chat", token, nil)
		var transcript []chat.Message
		decode(t, rec, &transcript)
		assert.Empty(t, transcript)
	})
}
