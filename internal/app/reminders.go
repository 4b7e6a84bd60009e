package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/metinatakli/movie-ticket-events/internal/domain"
	"github.com/metinatakli/movie-ticket-events/internal/events"
	"golang.org/x/sync/errgroup"
)

const (
	reminderLeadTime = 8 * time.Hour
	reminderWindow   = 10 * time.Minute
)

type reminderTask struct {
	UserEmail  string    `json:"userEmail"`
	UserName   string    `json:"userName"`
	MovieTitle string    `json:"movieTitle"`
	ShowTime   time.Time `json:"showTime"`
}

type reminderSummary struct {
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Message string `json:"message"`
}

// sendShowReminders emails every user holding a seat on a show that starts
// eight hours after the tick, once per user and show.
func (app *Application) sendShowReminders(ctx context.Context, in events.Input) (any, error) {
	now := in.Event.Timestamp.UTC()

	tasks, err := events.Run(ctx, in.Step, "prepare-reminder-tasks", func(ctx context.Context) ([]reminderTask, error) {
		return app.prepareReminderTasks(ctx, now)
	})
	if err != nil {
		return nil, err
	}

	if len(tasks) == 0 {
		in.Logger.Info("no reminders to send")
		return reminderSummary{Message: "No reminders to send"}, nil
	}

	return events.Run(ctx, in.Step, "send-all-reminders", func(ctx context.Context) (reminderSummary, error) {
		return app.sendReminders(in, tasks), nil
	})
}

func (app *Application) prepareReminderTasks(ctx context.Context, now time.Time) ([]reminderTask, error) {
	to := now.Add(reminderLeadTime)
	from := to.Add(-reminderWindow)

	shows, err := app.showRepo.GetStartingBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("get shows starting between %s and %s: %w", from, to, err)
	}

	occupants := make(map[string][]string, len(shows))
	var userIds []string
	seen := make(map[string]struct{})

	for _, show := range shows {
		if show.Movie == nil || len(show.OccupiedSeats) == 0 {
			continue
		}

		occupants[show.ID] = show.Occupants()

		for _, id := range occupants[show.ID] {
			if _, ok := seen[id]; ok {
				continue
			}

			seen[id] = struct{}{}
			userIds = append(userIds, id)
		}
	}

	tasks := []reminderTask{}

	if len(userIds) == 0 {
		return tasks, nil
	}

	users, err := app.userRepo.GetByIds(ctx, userIds)
	if err != nil {
		return nil, fmt.Errorf("get reminder recipients: %w", err)
	}

	byId := make(map[string]domain.User, len(users))
	for _, user := range users {
		byId[user.ID] = user
	}

	for _, show := range shows {
		for _, id := range occupants[show.ID] {
			user, ok := byId[id]
			if !ok {
				continue
			}

			tasks = append(tasks, reminderTask{
				UserEmail:  user.Email,
				UserName:   user.Name,
				MovieTitle: show.Movie.Title,
				ShowTime:   show.StartTime,
			})
		}
	}

	return tasks, nil
}

// sendReminders waits for every send to settle. A failed send is counted and
// never stops the others.
func (app *Application) sendReminders(in events.Input, tasks []reminderTask) reminderSummary {
	var sent, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(max(app.config.Mail.ReminderConcurrency, 1))

	for _, task := range tasks {
		g.Go(func() error {
			data := map[string]any{
				"userName":   task.UserName,
				"movieTitle": task.MovieTitle,
				"showTime":   task.ShowTime,
			}

			err := app.mailer.Send(task.UserEmail, "reminder.tmpl", data)
			if err != nil {
				failed.Add(1)
				in.Logger.Error("failed to send reminder", "recipient", task.UserEmail, "movie", task.MovieTitle, "error", err)
				return nil
			}

			sent.Add(1)
			return nil
		})
	}

	g.Wait()

	summary := reminderSummary{
		Sent:   int(sent.Load()),
		Failed: int(failed.Load()),
	}
	summary.Message = fmt.Sprintf("Sent %d reminder(s), %d failed", summary.Sent, summary.Failed)

	in.Logger.Info("reminders sent", "sent", summary.Sent, "failed", summary.Failed)

	return summary
}
