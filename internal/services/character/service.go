package character

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/grandline/server/internal/dependencies/clock"
	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/storage"
)

// Service manages the single character each user owns
type Service struct {
	store  storage.Store
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new character service
func New(store storage.Store, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// Get returns the user's character, or model.ErrCharacterNotFound when none
// exists yet. The client uses the not-found signal to route to character
// creation, so it must stay distinct from other failures.
func (s *Service) Get(ctx context.Context, userID model.UserID) (*model.Character, error) {
	return s.store.GetCharacterByUser(ctx, userID)
}

// Create inserts a character with fixed starting stats.
// A user can create at most one character, ever.
func (s *Service) Create(ctx context.Context, userID model.UserID, name, faction string) (*model.Character, error) {
	parsed, err := model.ParseFaction(faction)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetCharacterByUser(ctx, userID); err == nil {
		return nil, model.ErrCharacterExists
	}

	char := &model.Character{
		ID:         model.CharacterID(uuid.NewString()),
		UserID:     userID,
		Name:       name,
		Faction:    parsed,
		Level:      model.StartingLevel,
		Experience: 0,
		Berries:    model.StartingBerries,
		Health:     model.StartingHealth,
		Stamina:    model.StartingStamina,
		MapRegion:  model.StartingRegion,
		X:          model.StartingX,
		Y:          model.StartingY,
		CreatedAt:  s.clock.Now(),
	}

	if err := s.store.SaveCharacter(ctx, char); err != nil {
		return nil, err
	}

	s.logger.Info("character created",
		slog.String("character_id", string(char.ID)),
		slog.String("faction", string(char.Faction)))

	return char, nil
}
