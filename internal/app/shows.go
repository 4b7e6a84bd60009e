package app

import (
	"context"
	"fmt"

	"github.com/metinatakli/movie-ticket-events/internal/domain"
	"github.com/metinatakli/movie-ticket-events/internal/events"
)

func (app *Application) sendNewShowNotification(ctx context.Context, in events.Input) (any, error) {
	var payload domain.ShowAddedPayload

	err := app.decodeEvent(in.Event, &payload)
	if err != nil {
		return nil, err
	}

	users, err := app.userRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	for _, user := range users {
		data := map[string]any{
			"userName":   user.Name,
			"movieTitle": payload.MovieTitle,
		}

		err = app.mailer.Send(user.Email, "new_show.tmpl", data)
		if err != nil {
			return nil, fmt.Errorf("send new show notification to %s: %w", user.ID, err)
		}
	}

	in.Logger.Info("new show notification sent", "movie", payload.MovieTitle, "recipients", len(users))

	return map[string]string{"message": "Notification sent"}, nil
}
