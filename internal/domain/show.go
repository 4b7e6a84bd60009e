package domain

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type Show struct {
	ID            string
	MovieID       string
	Movie         *Movie
	StartTime     time.Time
	Price         decimal.Decimal
	OccupiedSeats map[string]string
	Version       int
}

// ReleaseSeats removes the given seat labels held by userId and returns the
// labels that were released. Seats held by anyone else are left alone.
func (s *Show) ReleaseSeats(userId string, seats []string) []string {
	released := make([]string, 0, len(seats))

	for _, seat := range seats {
		if holder, ok := s.OccupiedSeats[seat]; !ok || holder != userId {
			continue
		}

		delete(s.OccupiedSeats, seat)
		released = append(released, seat)
	}

	return released
}

// OccupySeats gives userId every listed seat that is still free and returns
// the labels it took.
func (s *Show) OccupySeats(userId string, seats []string) []string {
	if s.OccupiedSeats == nil {
		s.OccupiedSeats = make(map[string]string, len(seats))
	}

	taken := make([]string, 0, len(seats))

	for _, seat := range seats {
		if _, ok := s.OccupiedSeats[seat]; ok {
			continue
		}

		s.OccupiedSeats[seat] = userId
		taken = append(taken, seat)
	}

	return taken
}

// Occupants returns the distinct ids of users holding at least one seat,
// sorted for stable output.
func (s *Show) Occupants() []string {
	seen := make(map[string]struct{}, len(s.OccupiedSeats))
	userIds := make([]string, 0, len(s.OccupiedSeats))

	for _, userId := range s.OccupiedSeats {
		if _, ok := seen[userId]; ok {
			continue
		}

		seen[userId] = struct{}{}
		userIds = append(userIds, userId)
	}

	slices.Sort(userIds)

	return userIds
}

type ShowRepository interface {
	GetById(ctx context.Context, id string) (*Show, error)
	GetStartingBetween(ctx context.Context, from, to time.Time) ([]Show, error)
	UpdateOccupiedSeats(ctx context.Context, show *Show) error
}
