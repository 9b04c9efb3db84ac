package echoapi

import (
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/chat"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
)

// chatApi keeps one tutor conversation per signed-in user. Transcripts live
// in memory only; they vanish on restart just like the original session-
// scoped chat widget.
type chatApi struct {
	assistant chat.Assistant
	userSvc   user.Service
	validate  *validator.Validate
	states    *stateRegistry

	mu    sync.Mutex
	convs map[string]*chat.Service // by user ID
}

func registerChatAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options, states *stateRegistry) {
	api := chatApi{
		assistant: opts.Assistant,
		userSvc:   opts.UserSvc,
		validate:  opts.Validate,
		states:    states,
		convs:     make(map[string]*chat.Service),
	}

	cg := g.Group("/chat", jwt)
	cg.GET("", api.transcript)
	cg.POST("", api.send)
	cg.DELETE("", api.reset)
}

func (api *chatApi) conversation(userID string) *chat.Service {
	api.mu.Lock()
	defer api.mu.Unlock()
	conv, ok := api.convs[userID]
	if !ok {
		conv = chat.NewService(api.assistant)
		api.convs[userID] = conv
	}
	return conv
}

// Handlers

// send relays the message to the assistant. The caller's state is busy while
// the reply is pending; a reply landing after the screen changed is dropped.
func (api *chatApi) send(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data ChatRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChatRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	st := api.states.forUser(usr)
	epoch := st.Epoch()
	st.SetBusy(true)
	reply := api.conversation(usr.ID).Send(ctx.Request().Context(), data.Message, data.Context)
	st.SetBusy(false)
	if !st.StillCurrent(epoch) {
		return errStaleCompletion
	}
	return ctx.JSON(http.StatusOK, reply)
}

func (api *chatApi) transcript(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	return ctx.JSON(http.StatusOK, api.conversation(claims.Subject).Transcript())
}

func (api *chatApi) reset(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	api.conversation(claims.Subject).Reset()
	return ctx.NoContent(http.StatusNoContent)
}

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	Context string `json:"context"` // current view name, e.g. "DASHBOARD"
}
