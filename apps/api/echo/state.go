package echoapi

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/app"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
)

// errStaleCompletion is returned when a collaborator call finishes after the
// caller's screen already changed; the result is dropped, never applied.
var errStaleCompletion = echo.NewHTTPError(http.StatusConflict, "the screen changed while the request was being processed")

// stateRegistry hands out each user's state container. It is shared by every
// API that marks the app busy or checks completion staleness, so one user
// never sees another's session, theme or busy flag.
type stateRegistry struct {
	store  core.Store
	logger core.Logger

	mu     sync.Mutex
	states map[string]*app.State // by user ID
}

func newStateRegistry(store core.Store, logger core.Logger) *stateRegistry {
	return &stateRegistry{
		store:  store,
		logger: logger,
		states: make(map[string]*app.State),
	}
}

func (r *stateRegistry) forUser(usr user.User) *app.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[usr.ID]
	if !ok {
		st = app.NewForUser(r.store, usr, r.logger)
		r.states[usr.ID] = st
	}
	return st
}

// stateApi exposes the per-user view state machine. Navigation rules (no
// leaving AUTH without a session, admin panel gated to staff) are enforced
// by the state container itself.
type stateApi struct {
	userSvc user.Service
	states  *stateRegistry
}

func registerStateAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options, states *stateRegistry) {
	api := stateApi{
		userSvc: opts.UserSvc,
		states:  states,
	}

	sg := g.Group("/state", jwt)
	sg.GET("", api.retrieve)
	sg.POST("/navigate", api.navigate)
	sg.POST("/theme", api.toggleTheme)
}

func (api *stateApi) state(ctx echo.Context) (*app.State, error) {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return nil, errors.Wrap(err, "getting context user")
	}
	return api.states.forUser(usr), nil
}

// Handlers

func (api *stateApi) retrieve(ctx echo.Context) error {
	st, err := api.state(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.view(st))
}

func (api *stateApi) navigate(ctx echo.Context) error {
	st, err := api.state(ctx)
	if err != nil {
		return err
	}

	var data NavigateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NavigateRequest")
	}

	if err := st.NavigateTo(app.View(data.View)); err != nil {
		switch err {
		case app.ErrUnknownView:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case app.ErrStaffOnly, app.ErrNotSignedIn:
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case app.ErrBusy:
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "navigating")
	}
	return ctx.JSON(http.StatusOK, api.view(st))
}

func (api *stateApi) toggleTheme(ctx echo.Context) error {
	st, err := api.state(ctx)
	if err != nil {
		return err
	}
	st.ToggleTheme()
	return ctx.JSON(http.StatusOK, api.view(st))
}

func (api *stateApi) view(st *app.State) StateResponse {
	return StateResponse{
		View:  string(st.View()),
		Theme: st.Theme(),
		Busy:  st.Busy(),
	}
}

type (
	NavigateRequest struct {
		View string `json:"view"`
	}

	StateResponse struct {
		View  string `json:"view"`
		Theme string `json:"theme"`
		Busy  bool   `json:"busy"`
	}
)
