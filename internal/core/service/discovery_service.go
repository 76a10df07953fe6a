package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lifeofpease/matchmaking-api/internal/api/metrics"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

// DiscoveryService surfaces therapists to a client who has no existing
// connection record with them. Filtering, exclusion and the random-sample
// stage all live in the repository aggregation; this layer resolves the
// client's own disliked set and shapes the public projection.
type DiscoveryService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewDiscoveryService(users ports.UserRepository, logger zerolog.Logger) *DiscoveryService {
	return &DiscoveryService{users: users, logger: logger}
}

// Search runs the discovery query for a client.
func (s *DiscoveryService) Search(ctx context.Context, in ports.DiscoverySearchInput) ([]ports.TherapistCard, error) {
	client, err := s.users.FindByID(ctx, in.ClientID)
	if err != nil {
		return nil, fmt.Errorf("discovery search: %w", err)
	}

	results, err := s.users.SearchTherapists(ctx, ports.TherapistSearchFilter{
		ClientID: in.ClientID,
		Gender:   in.Gender,
		TagIDs:   in.TagIDs,
		Name:     in.Name,
		Excluded: client.DislikedTherapists,
		Limit:    in.Limit,
		Offset:   in.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("discovery search: %w", err)
	}

	metrics.DiscoverySearchesTotal.Inc()

	cards := make([]ports.TherapistCard, 0, len(results))
	for _, t := range results {
		cards = append(cards, ports.TherapistCard{
			ID:                t.ID,
			FirstName:         t.FirstName,
			LastName:          t.LastName,
			Gender:            t.Gender,
			PhotoURL:          t.PhotoURL,
			Description:       t.Description,
			ExperiencedIn:     t.ExperiencedIn,
			YearsOfExperience: t.YearsOfExperience,
		})
	}
	return cards, nil
}
