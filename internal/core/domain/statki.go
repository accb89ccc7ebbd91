package domain

import (
	"errors"
	"math/rand/v2"
	"time"
)

// BoardSize is the side length of a statki board.
const BoardSize = 10

const noShip = -1

// Fleet lists ship sizes of the classic statki set, largest first.
var Fleet = []int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1}

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrOutOfBounds      = errors.New("coordinates out of bounds")
	ErrGameOver         = errors.New("game already finished")
	ErrInvalidPlacement = errors.New("invalid ship placement")
	ErrGameBusy         = errors.New("game is being updated, retry")
)

// ShotOutcome is the result of attacking a single cell.
type ShotOutcome string

const (
	ShotMiss   ShotOutcome = "miss"
	ShotHit    ShotOutcome = "hit"
	ShotSunk   ShotOutcome = "sunk"
	ShotRepeat ShotOutcome = "repeat"
)

// Coord addresses a cell; X is the column, Y the row.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Cell is one square of the board. Ship holds an index into Board.Ships or -1.
type Cell struct {
	X      int  `json:"x"`
	Y      int  `json:"y"`
	Hidden bool `json:"hidden"`
	Ship   int  `json:"ship"`
	Miss   bool `json:"miss"`
}

// HasShip reports whether a ship occupies the cell.
func (c *Cell) HasShip() bool {
	return c.Ship != noShip
}

// attack reveals the cell. It reports false when the cell was already revealed.
func (c *Cell) attack() bool {
	if !c.Hidden {
		return false
	}
	c.Hidden = false
	if !c.HasShip() {
		c.Miss = true
	}
	return true
}

// Ship is a placed vessel.
type Ship struct {
	Size      int     `json:"size"`
	Cells     []Coord `json:"cells"`
	Destroyed bool    `json:"destroyed"`
}

// Board is a single-player statki game: the player fires at a hidden fleet.
type Board struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Cells     [][]Cell  `json:"cells"` // indexed [y][x]
	Ships     []Ship    `json:"ships"`
	Shots     int       `json:"shots"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBoard returns an empty board with every cell hidden.
func NewBoard(id, ownerID string, now time.Time) *Board {
	b := &Board{ID: id, OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	b.reset()
	return b
}

func (b *Board) reset() {
	b.Ships = nil
	b.Cells = make([][]Cell, BoardSize)
	for y := range b.Cells {
		b.Cells[y] = make([]Cell, BoardSize)
		for x := range b.Cells[y] {
			b.Cells[y][x] = Cell{X: x, Y: y, Hidden: true, Ship: noShip}
		}
	}
}

func inBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// PlaceShip puts a ship of the given size with its bow at `at`, extending
// right when horizontal and down otherwise. Ships may not overlap or touch,
// including diagonally.
func (b *Board) PlaceShip(size int, at Coord, horizontal bool) error {
	if size <= 0 {
		return ErrInvalidPlacement
	}
	cells := make([]Coord, 0, size)
	for i := 0; i < size; i++ {
		c := at
		if horizontal {
			c.X += i
		} else {
			c.Y += i
		}
		if !inBounds(c.X, c.Y) || b.touchesShip(c) {
			return ErrInvalidPlacement
		}
		cells = append(cells, c)
	}

	idx := len(b.Ships)
	b.Ships = append(b.Ships, Ship{Size: size, Cells: cells})
	for _, c := range cells {
		b.Cells[c.Y][c.X].Ship = idx
	}
	return nil
}

func (b *Board) touchesShip(c Coord) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := c.X+dx, c.Y+dy
			if inBounds(x, y) && b.Cells[y][x].HasShip() {
				return true
			}
		}
	}
	return false
}

const (
	placementTries  = 500
	placementRounds = 50
)

// PlaceFleet places every ship of fleet at random positions drawn from rng.
// The board is cleared first.
func (b *Board) PlaceFleet(fleet []int, rng *rand.Rand) error {
	for round := 0; round < placementRounds; round++ {
		b.reset()
		if b.tryPlaceFleet(fleet, rng) {
			return nil
		}
	}
	b.reset()
	return ErrInvalidPlacement
}

func (b *Board) tryPlaceFleet(fleet []int, rng *rand.Rand) bool {
	for _, size := range fleet {
		placed := false
		for try := 0; try < placementTries && !placed; try++ {
			at := Coord{X: rng.IntN(BoardSize), Y: rng.IntN(BoardSize)}
			placed = b.PlaceShip(size, at, rng.IntN(2) == 0) == nil
		}
		if !placed {
			return false
		}
	}
	return true
}

// Attack fires at (x, y) and advances the cell state machine:
// hidden empty -> miss, hidden ship -> hit (or sunk on the ship's last cell),
// revealed -> repeat with no state change.
func (b *Board) Attack(x, y int) (ShotOutcome, error) {
	if !inBounds(x, y) {
		return "", ErrOutOfBounds
	}
	if b.Finished() {
		return "", ErrGameOver
	}

	cell := &b.Cells[y][x]
	if !cell.attack() {
		return ShotRepeat, nil
	}
	b.Shots++

	if !cell.HasShip() {
		return ShotMiss, nil
	}

	ship := &b.Ships[cell.Ship]
	for _, c := range ship.Cells {
		if b.Cells[c.Y][c.X].Hidden {
			return ShotHit, nil
		}
	}
	ship.Destroyed = true
	return ShotSunk, nil
}

// Finished reports whether every ship on the board has been destroyed.
func (b *Board) Finished() bool {
	if len(b.Ships) == 0 {
		return false
	}
	for _, s := range b.Ships {
		if !s.Destroyed {
			return false
		}
	}
	return true
}

// Cell markers used by View.
const (
	MarkHidden = "?"
	MarkMiss   = "o"
	MarkHit    = "x"
)

// View renders the board as the player sees it, rows first.
func (b *Board) View() [][]string {
	rows := make([][]string, len(b.Cells))
	for y, row := range b.Cells {
		rows[y] = make([]string, len(row))
		for x, c := range row {
			switch {
			case c.Hidden:
				rows[y][x] = MarkHidden
			case c.HasShip():
				rows[y][x] = MarkHit
			default:
				rows[y][x] = MarkMiss
			}
		}
	}
	return rows
}

// ShipsLeft counts ships not yet destroyed.
func (b *Board) ShipsLeft() int {
	n := 0
	for _, s := range b.Ships {
		if !s.Destroyed {
			n++
		}
	}
	return n
}
