package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/lesson"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
)

type lessonApi struct {
	svc      *lesson.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerLessonAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := lessonApi{
		svc:      opts.LessonSvc,
		userSvc:  opts.UserSvc,
		validate: opts.Validate,
	}

	lg := g.Group("/lessons", jwt)
	lg.GET("", api.query)
	lg.GET("/:id", api.retrieve)
	lg.POST("/preview", api.preview, staffMiddleware())
	lg.POST("", api.publish, staffMiddleware())
	lg.DELETE("/:id", api.destroy, staffMiddleware())
}

// Handlers

func (api *lessonApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.QueryAll())
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	ls, err := api.svc.Get(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, ls)
}

// preview validates the draft and returns the lesson as it would appear,
// without persisting anything.
func (api *lessonApi) preview(ctx echo.Context) error {
	nl, author, err := api.bindDraft(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, nl.Pending(author))
}

func (api *lessonApi) publish(ctx echo.Context) error {
	nl, author, err := api.bindDraft(ctx)
	if err != nil {
		return err
	}
	ls, err := api.svc.Publish(nl.Pending(author))
	if err != nil {
		return errors.Wrap(err, "publishing lesson")
	}
	return ctx.JSON(http.StatusCreated, ls)
}

func (api *lessonApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return errHttpNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *lessonApi) bindDraft(ctx echo.Context) (lesson.NewLesson, user.User, error) {
	var nl lesson.NewLesson
	if err := ctx.Bind(&nl); err != nil {
		return nl, user.User{}, errors.Wrap(err, "binding to NewLesson")
	}
	if err := nl.Validate(api.validate); err != nil {
		return nl, user.User{}, err
	}
	author, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return nl, user.User{}, errors.Wrap(err, "getting context user")
	}
	return nl, author, nil
}
