package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/contact"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/user"
)

type contactApi struct {
	svc      *contact.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerContactAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := contactApi{
		svc:      opts.ContactSvc,
		userSvc:  opts.UserSvc,
		validate: opts.Validate,
	}

	cg := g.Group("/contact", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.POST("/:id/reply", api.reply, staffMiddleware())
}

// Handlers

func (api *contactApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, api.svc.QueryFor(usr))
}

func (api *contactApi) create(ctx echo.Context) error {
	var data contact.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	msg, err := api.svc.Create(usr, data)
	if err != nil {
		return errors.Wrap(err, "creating message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *contactApi) reply(ctx echo.Context) error {
	var data ReplyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReplyRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	msg, err := api.svc.Reply(ctx.Param("id"), data.Content)
	if err != nil {
		switch errors.Cause(err) {
		case contact.ErrNotFound:
			return errHttpNotFound
		case contact.ErrAlreadyReplied:
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "replying to message")
	}
	return ctx.JSON(http.StatusOK, msg)
}

type ReplyRequest struct {
	Content string `json:"content" validate:"required"`
}
