package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gameportal/portal-api/internal/api/metrics"
	"github.com/gameportal/portal-api/internal/core/domain"
	"github.com/gameportal/portal-api/internal/core/ports"
)

type StatkiHandler struct {
	games ports.StatkiService
}

func NewStatkiHandler(games ports.StatkiService) *StatkiHandler {
	return &StatkiHandler{games: games}
}

type attackRequest struct {
	X *int `json:"x" validate:"required"`
	Y *int `json:"y" validate:"required"`
}

// boardResponse never exposes ship positions; cells come from Board.View.
type boardResponse struct {
	ID        string     `json:"id"`
	Cells     [][]string `json:"cells"`
	Shots     int        `json:"shots"`
	ShipsLeft int        `json:"ships_left"`
	Finished  bool       `json:"finished"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type attackResponse struct {
	Outcome  domain.ShotOutcome `json:"outcome"`
	Finished bool               `json:"finished"`
	Board    boardResponse      `json:"board"`
}

func toBoardResponse(b *domain.Board) boardResponse {
	return boardResponse{
		ID:        b.ID,
		Cells:     b.View(),
		Shots:     b.Shots,
		ShipsLeft: b.ShipsLeft(),
		Finished:  b.Finished(),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// Create starts a new statki game.
//
// @Summary      New statki game
// @Tags         statki
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  boardResponse
// @Failure      401  {object}  map[string]string
// @Router       /games/statki [post]
func (h *StatkiHandler) Create(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	board, err := h.games.NewGame(c.Request().Context(), claims.ID)
	if err != nil {
		return err
	}
	metrics.StatkiGamesTotal.WithLabelValues("started").Inc()
	return c.JSON(http.StatusCreated, toBoardResponse(board))
}

// Get returns the player's view of a game.
//
// @Summary      Get statki game
// @Tags         statki
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Game ID"
// @Success      200  {object}  boardResponse
// @Failure      404  {object}  map[string]string
// @Router       /games/statki/{id} [get]
func (h *StatkiHandler) Get(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	board, err := h.games.Game(c.Request().Context(), claims.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBoardResponse(board))
}

// Attack fires one shot.
//
// @Summary      Attack a cell
// @Tags         statki
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Game ID"
// @Param        body  body      attackRequest  true  "Target cell"
// @Success      200   {object}  attackResponse
// @Failure      400   {object}  map[string]any
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /games/statki/{id}/attack [post]
func (h *StatkiHandler) Attack(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req attackRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload()
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.games.Attack(c.Request().Context(), claims.ID, c.Param("id"), *req.X, *req.Y)
	if err != nil {
		return err
	}

	metrics.StatkiShotsTotal.WithLabelValues(string(res.Outcome)).Inc()
	if res.Finished && res.Outcome == domain.ShotSunk {
		metrics.StatkiGamesTotal.WithLabelValues("won").Inc()
	}
	return c.JSON(http.StatusOK, attackResponse{
		Outcome:  res.Outcome,
		Finished: res.Finished,
		Board:    toBoardResponse(res.Board),
	})
}
