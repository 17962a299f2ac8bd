package service

import (
	"fmt"

	"guardian-engine-go/internal/models"
	"guardian-engine-go/internal/registry"
	"guardian-engine-go/internal/store"
)

// Lookback windows for the read-side queries feeding the engine. The
// weekly bonus needs the six days before a payout day; the anomaly
// detector wants a baseline beyond its detection window.
const (
	weeklyLookbackDays  = 14
	anomalyLookbackDays = 30
)

// Service orchestrates the engine against a profile store: every public
// method is one read-modify-write for one user. The service performs no
// retries; on ErrConcurrentModification the caller re-invokes with
// nothing left behind, since every engine function is a pure function of
// the freshly loaded state.
type Service struct {
	store    store.ProfileStore
	registry *registry.Registry
}

func NewService(profileStore store.ProfileStore, reg *registry.Registry) *Service {
	return &Service{
		store:    profileStore,
		registry: reg,
	}
}

// Registry exposes the static catalog to presentation layers.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

func validateMetrics(m models.ReportMetrics) error {
	fields := map[string]int{
		"views":         m.Views,
		"likes":         m.Likes,
		"replies":       m.Replies,
		"new_followers": m.NewFollowers,
		"post_count":    m.PostCount,
	}
	for name, value := range fields {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", name, value)
		}
	}
	return nil
}
