package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShowReleaseSeats(t *testing.T) {
	tests := []struct {
		name          string
		occupied      map[string]string
		seats         []string
		wantReleased  []string
		wantRemaining map[string]string
	}{
		{
			name:          "releases every booked seat",
			occupied:      map[string]string{"G12": "user_a", "G13": "user_a", "G14": "user_b"},
			seats:         []string{"G12", "G13"},
			wantReleased:  []string{"G12", "G13"},
			wantRemaining: map[string]string{"G14": "user_b"},
		},
		{
			name:          "ignores seats that are not occupied",
			occupied:      map[string]string{"A1": "user_a"},
			seats:         []string{"A1", "A2"},
			wantReleased:  []string{"A1"},
			wantRemaining: map[string]string{},
		},
		{
			name:          "keeps seats another user holds",
			occupied:      map[string]string{"G12": "user_c", "G13": "user_a"},
			seats:         []string{"G12", "G13"},
			wantReleased:  []string{"G13"},
			wantRemaining: map[string]string{"G12": "user_c"},
		},
		{
			name:          "nothing to release",
			occupied:      map[string]string{"A1": "user_a"},
			seats:         nil,
			wantReleased:  []string{},
			wantRemaining: map[string]string{"A1": "user_a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			show := Show{OccupiedSeats: tt.occupied}

			released := show.ReleaseSeats("user_a", tt.seats)

			assert.Equal(t, tt.wantReleased, released)
			assert.Equal(t, tt.wantRemaining, show.OccupiedSeats)
		})
	}
}

func TestShowOccupySeats(t *testing.T) {
	show := Show{OccupiedSeats: map[string]string{"G12": "user_c"}}

	taken := show.OccupySeats("user_a", []string{"G12", "G13"})

	assert.Equal(t, []string{"G13"}, taken)
	assert.Equal(t, map[string]string{"G12": "user_c", "G13": "user_a"}, show.OccupiedSeats)

	empty := Show{}
	assert.Equal(t, []string{"A1"}, empty.OccupySeats("user_a", []string{"A1"}))
}

func TestShowOccupants(t *testing.T) {
	show := Show{
		OccupiedSeats: map[string]string{
			"G12": "user_a",
			"G13": "user_a",
			"G14": "user_b",
		},
	}

	assert.Equal(t, []string{"user_a", "user_b"}, show.Occupants())
	assert.Empty(t, (&Show{}).Occupants())
}
