package echoapi

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/exam"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
)

// scan uploads are capped at 10MB, plenty for a photographed exam sheet
const maxScanSize = 10 << 20

var (
	errNoAttempt       = echo.NewHTTPError(http.StatusNotFound, "no exam attempt in progress")
	errAttemptRunning  = echo.NewHTTPError(http.StatusConflict, "an exam attempt is already in progress")
	errAttemptFinished = echo.NewHTTPError(http.StatusConflict, "the exam attempt is already finished")
)

type examApi struct {
	svc      *exam.Service
	userSvc  user.Service
	validate *validator.Validate
	states   *stateRegistry

	mu       sync.Mutex
	attempts map[string]*exam.Session // by user ID
}

func registerExamAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options, states *stateRegistry) {
	api := examApi{
		svc:      opts.ExamSvc,
		userSvc:  opts.UserSvc,
		validate: opts.Validate,
		states:   states,
		attempts: make(map[string]*exam.Session),
	}

	eg := g.Group("/exams", jwt)
	eg.GET("", api.query)
	eg.GET("/:id", api.retrieve)
	eg.POST("", api.create, staffMiddleware())
	eg.DELETE("/:id", api.destroy, staffMiddleware())
	eg.POST("/digitize", api.digitize, staffMiddleware())
	eg.POST("/approve", api.approve, staffMiddleware())

	// the current user's single attempt
	ag := g.Group("/attempt", jwt)
	ag.POST("/:examId", api.startAttempt)
	ag.GET("", api.attemptStatus)
	ag.PUT("/answers", api.setAnswer)
	ag.POST("/submit", api.submit)
	ag.GET("/result", api.result)
	ag.GET("/review", api.review)
	ag.DELETE("", api.abandon)
}

// Handlers

func (api *examApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.QueryAll())
}

func (api *examApi) retrieve(ctx echo.Context) error {
	ex, err := api.svc.Get(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, ex)
}

func (api *examApi) create(ctx echo.Context) error {
	var data exam.Exam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Exam")
	}
	ex, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, ex)
}

func (api *examApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errHttpNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

// digitize accepts an uploaded image or PDF and returns the extracted draft
// for review. Nothing is persisted until the draft is approved. The caller's
// state is marked busy for the duration of the scan, and a scan finishing
// after the caller left the screen is discarded.
func (api *examApi) digitize(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a file upload is required")
	}
	if fh.Size > maxScanSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxScanSize))
	if err != nil {
		return errors.Wrap(err, "reading upload")
	}

	st := api.states.forUser(usr)
	epoch := st.Epoch()
	st.SetBusy(true)
	draft, err := api.svc.Digitize(ctx.Request().Context(), data, fh.Header.Get("Content-Type"))
	st.SetBusy(false)
	if err != nil {
		return errors.Wrap(err, "digitizing exam")
	}
	if !st.StillCurrent(epoch) {
		return errStaleCompletion
	}
	return ctx.JSON(http.StatusOK, draft)
}

func (api *examApi) approve(ctx echo.Context) error {
	var data exam.Draft
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Draft")
	}
	ex, err := api.svc.Approve(data)
	if err != nil {
		return errors.Wrap(err, "approving draft")
	}
	return ctx.JSON(http.StatusCreated, ex)
}

// Attempt handlers

func (api *examApi) session(userID string) (*exam.Session, bool) {
	api.mu.Lock()
	defer api.mu.Unlock()
	s, ok := api.attempts[userID]
	return s, ok
}

func (api *examApi) startAttempt(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ex, err := api.svc.Get(ctx.Param("examId"))
	if err != nil {
		return errHttpNotFound
	}

	api.mu.Lock()
	if s, ok := api.attempts[claims.Subject]; ok {
		if _, done := s.Result(); !done {
			api.mu.Unlock()
			return errAttemptRunning
		}
	}
	s := exam.NewSession(ex, nil)
	api.attempts[claims.Subject] = s
	api.mu.Unlock()

	// the countdown outlives the request
	s.Start(context.Background())
	return ctx.JSON(http.StatusCreated, api.status(s))
}

func (api *examApi) attemptStatus(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	s, ok := api.session(claims.Subject)
	if !ok {
		return errNoAttempt
	}
	return ctx.JSON(http.StatusOK, api.status(s))
}

func (api *examApi) setAnswer(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	s, ok := api.session(claims.Subject)
	if !ok {
		return errNoAttempt
	}
	if _, done := s.Result(); done {
		return errAttemptFinished
	}

	var data AnswerRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnswerRequest")
	}
	s.SetAnswer(data.QuestionID, data.OptionIndex)
	return ctx.JSON(http.StatusOK, api.status(s))
}

func (api *examApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	s, ok := api.session(claims.Subject)
	if !ok {
		return errNoAttempt
	}
	return ctx.JSON(http.StatusOK, s.Submit())
}

func (api *examApi) result(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	s, ok := api.session(claims.Subject)
	if !ok {
		return errNoAttempt
	}
	res, done := s.Result()
	if !done {
		return errNoAttempt
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *examApi) review(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	s, ok := api.session(claims.Subject)
	if !ok {
		return errNoAttempt
	}
	if _, done := s.Result(); !done {
		return errNoAttempt
	}
	return ctx.JSON(http.StatusOK, s.Review())
}

// abandon drops the attempt without producing a result, the equivalent of
// walking out of the exam room.
func (api *examApi) abandon(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	api.mu.Lock()
	s, ok := api.attempts[claims.Subject]
	delete(api.attempts, claims.Subject)
	api.mu.Unlock()

	if ok {
		s.Stop()
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *examApi) status(s *exam.Session) AttemptStatus {
	_, done := s.Result()
	return AttemptStatus{
		ExamID:    s.Exam().ID,
		Remaining: s.Remaining(),
		Answers:   s.Answers(),
		Finished:  done,
	}
}

type (
	AnswerRequest struct {
		QuestionID  int `json:"questionId"`
		OptionIndex int `json:"optionIndex"`
	}

	AttemptStatus struct {
		ExamID    string      `json:"examId"`
		Remaining int         `json:"remaining"`
		Answers   map[int]int `json:"answers"`
		Finished  bool        `json:"finished"`
	}
)
