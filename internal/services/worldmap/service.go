package worldmap

import (
	"context"
	"log/slog"

	"github.com/grandline/server/internal/dependencies/clock"
	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/storage"
)

// Publisher pushes events out to connected realtime clients
type Publisher interface {
	Publish(event model.Event)
}

// Service handles tile-map reads and character movement
type Service struct {
	store     storage.Store
	clock     clock.Clock
	publisher Publisher
	logger    *slog.Logger

	village *model.TileMap
}

// New creates a new world map service
func New(store storage.Store, clk clock.Clock, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		clock:     clk,
		publisher: publisher,
		logger:    logger,
		village:   model.WindmillVillage(),
	}
}

// Map returns the tile map for the starting region
func (s *Service) Map() *model.TileMap {
	return s.village
}

// MoveOutcome reports where a character ended up after a move
type MoveOutcome struct {
	Position model.Position
	AtPort   bool
}

// Move steps the user's character by (dx, dy). Only unit steps on the four
// cardinal directions are accepted. A step into an impassable tile or off
// the grid returns ErrBlocked with the character's position unchanged.
func (s *Service) Move(ctx context.Context, userID model.UserID, dx, dy int) (*MoveOutcome, error) {
	if !unitStep(dx, dy) {
		return nil, model.ErrInvalidMove
	}

	char, err := s.store.GetCharacterByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	target := model.Position{X: char.X + dx, Y: char.Y + dy}
	if !s.village.At(target).Passable() {
		return nil, model.ErrBlocked
	}

	if err := s.store.UpdateCharacterPosition(ctx, char.ID, s.village.Region, target.X, target.Y); err != nil {
		return nil, err
	}

	atPort := s.village.At(target) == model.TilePort

	if s.publisher != nil {
		s.publisher.Publish(model.Event{
			Type:        model.EventCharacterMoved,
			Timestamp:   s.clock.Now(),
			CharacterID: char.ID,
			Payload: model.CharacterMovedPayload{
				Region: s.village.Region,
				X:      target.X,
				Y:      target.Y,
				AtPort: atPort,
			},
		})
	}

	s.logger.Debug("character moved",
		slog.String("character_id", string(char.ID)),
		slog.Int("x", target.X),
		slog.Int("y", target.Y),
		slog.Bool("at_port", atPort))

	return &MoveOutcome{Position: target, AtPort: atPort}, nil
}

// ClickDelta converts a clicked cell into a movement step. Clicking a cell
// directly adjacent to from yields the corresponding unit step; anything
// else yields (0, 0), which Move rejects.
func ClickDelta(from, target model.Position) (dx, dy int) {
	dx, dy = target.X-from.X, target.Y-from.Y
	if unitStep(dx, dy) {
		return dx, dy
	}
	return 0, 0
}

func unitStep(dx, dy int) bool {
	return (dx == 0) != (dy == 0) && dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}
