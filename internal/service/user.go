package service

import (
	"context"
	"fmt"
	"strings"

	"ggst-replays/internal/api"
	"ggst-replays/internal/constants"
	"ggst-replays/internal/domain"

	"github.com/rs/zerolog"
)

type UserDirectory interface {
	ResolveUserID(ctx context.Context, steamID string) (string, error)
	GetUserStats(ctx context.Context, userID string) (*api.UserStatsResponse, error)
}

type UserService struct {
	directory UserDirectory
	logger    zerolog.Logger
}

func NewUserService(directory UserDirectory, logger zerolog.Logger) *UserService {
	return &UserService{directory: directory, logger: logger}
}

// Lookup resolves a steam id to the game's user id and fetches the public profile.
func (s *UserService) Lookup(ctx context.Context, steamID string) (*domain.User, error) {
	steamID = strings.TrimSpace(steamID)
	if steamID == "" {
		return nil, fmt.Errorf("%w: empty steam id", domain.ErrInvalidParameters)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	userID, err := s.directory.ResolveUserID(ctx, steamID)
	if err != nil {
		s.logger.Error().Err(err).Str("steam_id", steamID).Msg("failed to resolve user id")
		return nil, fmt.Errorf("failed to resolve user id: %w", err)
	}

	stats, err := s.directory.GetUserStats(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to fetch user stats")
		return nil, fmt.Errorf("failed to fetch user stats: %w", err)
	}

	s.logger.Info().Str("steam_id", steamID).Str("user_id", userID).Msg("user resolved")
	return &domain.User{
		ID:      userID,
		Name:    stats.NickName,
		Comment: stats.PublicComment,
	}, nil
}
