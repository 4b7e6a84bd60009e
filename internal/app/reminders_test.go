package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/metinatakli/movie-ticket-events/internal/domain"
	"github.com/metinatakli/movie-ticket-events/internal/mailer"
	"github.com/metinatakli/movie-ticket-events/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reminderTick = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func reminderUsers() []domain.User {
	return []domain.User{
		{ID: "A", Name: "Freddie Mercury", Email: "freddie@example.com"},
		{ID: "B", Name: "Brian May", Email: "brian@example.com"},
		{ID: "C", Name: "Roger Taylor", Email: "roger@example.com"},
	}
}

func userRepoWith(users []domain.User) *mocks.MockUserRepo {
	return &mocks.MockUserRepo{
		GetByIdsFunc: func(ctx context.Context, ids []string) ([]domain.User, error) {
			wanted := make(map[string]bool, len(ids))
			for _, id := range ids {
				wanted[id] = true
			}

			var found []domain.User
			for _, u := range users {
				if wanted[u.ID] {
					found = append(found, u)
				}
			}
			return found, nil
		},
		GetAllFunc: func(ctx context.Context) ([]domain.User, error) {
			return users, nil
		},
	}
}

func TestPrepareReminderTasks(t *testing.T) {
	showTime := reminderTick.Add(8*time.Hour - 5*time.Minute)

	tests := []struct {
		name       string
		shows      []domain.Show
		wantEmails []string
	}{
		{
			name: "one task per user and show",
			shows: []domain.Show{
				{
					ID:            "show-1",
					Movie:         &domain.Movie{Title: "Dune Part Three"},
					StartTime:     showTime,
					OccupiedSeats: map[string]string{"G12": "A", "G13": "A", "G14": "B"},
				},
			},
			wantEmails: []string{"freddie@example.com", "brian@example.com"},
		},
		{
			name: "user with seats on two shows gets two tasks",
			shows: []domain.Show{
				{
					ID:            "show-1",
					Movie:         &domain.Movie{Title: "Dune Part Three"},
					StartTime:     showTime,
					OccupiedSeats: map[string]string{"G12": "A"},
				},
				{
					ID:            "show-2",
					Movie:         &domain.Movie{Title: "Arrival"},
					StartTime:     showTime,
					OccupiedSeats: map[string]string{"B1": "A", "B2": "C"},
				},
			},
			wantEmails: []string{"freddie@example.com", "freddie@example.com", "roger@example.com"},
		},
		{
			name: "shows without movie or seats are skipped",
			shows: []domain.Show{
				{ID: "show-1", StartTime: showTime, OccupiedSeats: map[string]string{"G12": "A"}},
				{ID: "show-2", Movie: &domain.Movie{Title: "Arrival"}, StartTime: showTime, OccupiedSeats: map[string]string{}},
			},
		},
		{
			name: "occupant without user record is skipped",
			shows: []domain.Show{
				{
					ID:            "show-1",
					Movie:         &domain.Movie{Title: "Dune Part Three"},
					StartTime:     showTime,
					OccupiedSeats: map[string]string{"G12": "ghost", "G13": "B"},
				},
			},
			wantEmails: []string{"brian@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFrom, gotTo time.Time

			app := newTestApplication(t, func(a *Application) {
				a.userRepo = userRepoWith(reminderUsers())
				a.showRepo = &mocks.MockShowRepo{
					GetStartingBetweenFunc: func(ctx context.Context, from, to time.Time) ([]domain.Show, error) {
						gotFrom, gotTo = from, to
						return tt.shows, nil
					},
				}
			})

			tasks, err := app.prepareReminderTasks(context.Background(), reminderTick)
			require.NoError(t, err)

			assert.Equal(t, reminderTick.Add(8*time.Hour-10*time.Minute), gotFrom)
			assert.Equal(t, reminderTick.Add(8*time.Hour), gotTo)

			emails := make([]string, 0, len(tasks))
			for _, task := range tasks {
				emails = append(emails, task.UserEmail)
				assert.Equal(t, showTime, task.ShowTime)
			}

			assert.ElementsMatch(t, tt.wantEmails, emails)
		})
	}
}

func TestSendShowReminders(t *testing.T) {
	shows := []domain.Show{
		{
			ID:            "show-1",
			Movie:         &domain.Movie{Title: "Dune Part Three"},
			StartTime:     reminderTick.Add(8*time.Hour - 5*time.Minute),
			OccupiedSeats: map[string]string{"G12": "A", "G13": "A", "G14": "B", "G15": "C"},
		},
	}

	tests := []struct {
		name        string
		shows       []domain.Show
		failFor     []string
		wantSummary reminderSummary
		wantSent    int
	}{
		{
			name:  "sends every reminder",
			shows: shows,
			wantSummary: reminderSummary{
				Sent:    3,
				Message: "Sent 3 reminder(s), 0 failed",
			},
			wantSent: 3,
		},
		{
			name:    "one failure does not stop the others",
			shows:   shows,
			failFor: []string{"brian@example.com"},
			wantSummary: reminderSummary{
				Sent:    2,
				Failed:  1,
				Message: "Sent 2 reminder(s), 1 failed",
			},
			wantSent: 2,
		},
		{
			name:    "every send fails",
			shows:   shows,
			failFor: []string{"freddie@example.com", "brian@example.com", "roger@example.com"},
			wantSummary: reminderSummary{
				Failed:  3,
				Message: "Sent 0 reminder(s), 3 failed",
			},
		},
		{
			name:  "no shows in the window",
			shows: nil,
			wantSummary: reminderSummary{
				Message: "No reminders to send",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockMailer := mailer.NewMockMailer()
			for _, recipient := range tt.failFor {
				mockMailer.FailFor(recipient, errors.New("mailbox unavailable"))
			}

			app := newTestApplication(t, func(a *Application) {
				a.mailer = mockMailer
				a.userRepo = userRepoWith(reminderUsers())
				a.showRepo = &mocks.MockShowRepo{
					GetStartingBetweenFunc: func(ctx context.Context, from, to time.Time) ([]domain.Show, error) {
						return tt.shows, nil
					},
				}
			})

			output, err := app.sendShowReminders(context.Background(), newCronInput(reminderTick))
			require.NoError(t, err)

			summary, ok := output.(reminderSummary)
			require.True(t, ok, "unexpected output %T", output)

			assert.Equal(t, tt.wantSummary, summary)
			assert.Len(t, mockMailer.GetSentEmails(), tt.wantSent)
			assert.Equal(t, summary.Sent+summary.Failed, mockMailer.Attempts())

			for _, email := range mockMailer.GetSentEmails() {
				assert.Equal(t, "reminder.tmpl", email.TemplateFile)
				assert.Equal(t, `Reminder: "Dune Part Three" starts soon!`, email.Subject)
			}
		})
	}
}

func TestSendShowRemindersRepositoryError(t *testing.T) {
	mockMailer := mailer.NewMockMailer()

	app := newTestApplication(t, func(a *Application) {
		a.mailer = mockMailer
		a.showRepo = &mocks.MockShowRepo{
			GetStartingBetweenFunc: func(ctx context.Context, from, to time.Time) ([]domain.Show, error) {
				return nil, errTestDatabase
			},
		}
	})

	_, err := app.sendShowReminders(context.Background(), newCronInput(reminderTick))
	assert.ErrorIs(t, err, errTestDatabase)
	assert.Zero(t, mockMailer.Attempts())
}
