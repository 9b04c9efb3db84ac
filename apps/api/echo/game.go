package echoapi

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core/game"
)

var directions = map[string]game.Direction{
	"up":    game.DirUp,
	"down":  game.DirDown,
	"left":  game.DirLeft,
	"right": game.DirRight,
}

// gameApi drives the snake mini-game, one board per signed-in user. The
// client polls /step on its tick interval.
type gameApi struct {
	store core.Store

	mu    sync.Mutex
	games map[string]*game.Snake // by user ID
}

func registerGameAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := gameApi{
		store: opts.Store,
		games: make(map[string]*game.Snake),
	}

	gg := g.Group("/game/snake", jwt)
	gg.GET("", api.retrieve)
	gg.POST("", api.restart)
	gg.POST("/turn", api.turn)
	gg.POST("/step", api.step)
}

func (api *gameApi) game(userID string) *game.Snake {
	api.mu.Lock()
	defer api.mu.Unlock()
	g, ok := api.games[userID]
	if !ok {
		g = game.New(api.store, nil)
		api.games[userID] = g
	}
	return g
}

// Handlers

func (api *gameApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	return ctx.JSON(http.StatusOK, api.board(api.game(claims.Subject)))
}

func (api *gameApi) restart(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	g := api.game(claims.Subject)
	g.Restart()
	return ctx.JSON(http.StatusOK, api.board(g))
}

func (api *gameApi) turn(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data TurnRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TurnRequest")
	}
	dir, ok := directions[data.Direction]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown direction")
	}

	g := api.game(claims.Subject)
	g.Turn(dir)
	return ctx.JSON(http.StatusOK, api.board(g))
}

func (api *gameApi) step(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	g := api.game(claims.Subject)
	g.Step()
	return ctx.JSON(http.StatusOK, api.board(g))
}

func (api *gameApi) board(g *game.Snake) BoardResponse {
	return BoardResponse{
		Body:      g.Body(),
		Food:      g.Food(),
		Score:     g.Score(),
		HighScore: g.HighScore(),
		Over:      g.Over(),
	}
}

type (
	TurnRequest struct {
		Direction string `json:"direction"`
	}

	BoardResponse struct {
		Body      []game.Point `json:"body"`
		Food      game.Point   `json:"food"`
		Score     int          `json:"score"`
		HighScore int          `json:"highScore"`
		Over      bool         `json:"over"`
	}
)
