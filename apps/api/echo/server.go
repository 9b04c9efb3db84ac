package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/chat"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/contact"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/exam"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/lesson"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Conf       *core.Config
		Logger     core.Logger
		Store      core.Store
		UserSvc    user.Service
		ExamSvc    *exam.Service
		LessonSvc  *lesson.Service
		ContactSvc *contact.Service
		Assistant  chat.Assistant
		Validate   *validator.Validate
		Translator ut.Translator

		// Shutdown is called when a handler reports an unrecoverable error.
		Shutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts   *Options
		app    *echo.Echo
		states *stateRegistry
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Shutdown == nil {
		opts.Shutdown = func() {}
	}
	s := &server{
		opts:   opts,
		app:    echo.New(),
		states: newStateRegistry(opts.Store, opts.Logger),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.Shutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := jwtMiddleware(conf)

	registerUserAPI(v1, jwt, s.opts)
	registerExamAPI(v1, jwt, s.opts, s.states)
	registerLessonAPI(v1, jwt, s.opts)
	registerContactAPI(v1, jwt, s.opts)
	registerChatAPI(v1, jwt, s.opts, s.states)
	registerStateAPI(v1, jwt, s.opts, s.states)
	registerGameAPI(v1, jwt, s.opts)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to EduExam API!")
}
