// Package game implements the snake mini-game engine: a fixed grid, a
// tick-driven step function and a persisted high score.
package game

import (
	"math/rand"
	"sync"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
)

// Board geometry: a 400x400 board divided into 20px boxes.
const (
	BoxSize    = 20
	BoardSize  = 400
	GridSize   = BoardSize / BoxSize
	FoodPoints = 10
)

// Direction of travel, one box per tick.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

func (d Direction) opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	default:
		return DirLeft
	}
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Snake is a single game instance. Placement of food uses an injectable
// rand.Rand so tests can drive deterministic boards.
type Snake struct {
	mu        sync.Mutex
	rng       *rand.Rand
	store     core.Store
	body      []Point // head first
	dir       Direction
	pending   Direction
	food      Point
	score     int
	highScore int
	over      bool
}

// New starts a game with the snake in the middle of the board heading
// right. The high score is restored from the store; a missing or malformed
// entry starts at zero.
func New(store core.Store, rng *rand.Rand) *Snake {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	g := &Snake{
		rng:     rng,
		store:   store,
		body:    []Point{{X: GridSize / 2, Y: GridSize / 2}},
		dir:     DirRight,
		pending: DirRight,
	}
	var hs int
	if ok, err := store.Load(core.KeySnakeHighScore, &hs); err == nil && ok && hs > 0 {
		g.highScore = hs
	}
	g.placeFood()
	return g
}

// placeFood picks a random free box. Caller holds the lock.
func (g *Snake) placeFood() {
	occupied := make(map[Point]bool, len(g.body))
	for _, p := range g.body {
		occupied[p] = true
	}
	for {
		p := Point{X: g.rng.Intn(GridSize), Y: g.rng.Intn(GridSize)}
		if !occupied[p] {
			g.food = p
			return
		}
	}
}

// Turn queues a direction change for the next step. A reversal straight
// into the snake's own neck is ignored.
func (g *Snake) Turn(dir Direction) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.over || dir == g.dir.opposite() {
		return
	}
	g.pending = dir
}

// Step advances the game by one tick and reports whether the game is still
// running. Hitting a wall or the snake's own body ends the game; eating
// food grows the snake and scores FoodPoints.
func (g *Snake) Step() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.over {
		return false
	}

	g.dir = g.pending
	head := g.body[0]
	switch g.dir {
	case DirUp:
		head.Y--
	case DirDown:
		head.Y++
	case DirLeft:
		head.X--
	case DirRight:
		head.X++
	}

	if head.X < 0 || head.X >= GridSize || head.Y < 0 || head.Y >= GridSize {
		g.endLocked()
		return false
	}
	for _, p := range g.body {
		if p == head {
			g.endLocked()
			return false
		}
	}

	g.body = append([]Point{head}, g.body...)
	if head == g.food {
		g.score += FoodPoints
		g.placeFood()
	} else {
		g.body = g.body[:len(g.body)-1]
	}
	return true
}

// endLocked finishes the game and persists a new high score if earned.
// Caller holds the lock.
func (g *Snake) endLocked() {
	g.over = true
	if g.score > g.highScore {
		g.highScore = g.score
		_ = g.store.Save(core.KeySnakeHighScore, g.highScore)
	}
}

// Restart resets the board keeping the high score.
func (g *Snake) Restart() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.body = []Point{{X: GridSize / 2, Y: GridSize / 2}}
	g.dir = DirRight
	g.pending = DirRight
	g.score = 0
	g.over = false
	g.placeFood()
}

func (g *Snake) Score() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score
}

func (g *Snake) HighScore() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.highScore
}

func (g *Snake) Over() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.over
}

// Body returns a copy of the snake, head first.
func (g *Snake) Body() []Point {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Point, len(g.body))
	copy(out, g.body)
	return out
}

func (g *Snake) Food() Point {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.food
}
