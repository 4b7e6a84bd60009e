package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/metinatakli/movie-ticket-events/api"
	"github.com/metinatakli/movie-ticket-events/internal/domain"
	"github.com/metinatakli/movie-ticket-events/internal/events"
)

type userSyncResult struct {
	UserID string `json:"userId"`
	Synced bool   `json:"synced"`
}

// toDomainUser keeps the first email address and joins the name parts with
// a single space, even when one of them is empty.
func toDomainUser(payload api.ClerkUser) domain.User {
	return domain.User{
		ID:    payload.Id,
		Email: string(payload.EmailAddresses[0].EmailAddress),
		Name:  deref(payload.FirstName) + " " + deref(payload.LastName),
		Image: deref(payload.ImageUrl),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func (app *Application) syncUserCreation(ctx context.Context, in events.Input) (any, error) {
	var payload api.ClerkUser

	err := app.decodeEvent(in.Event, &payload)
	if err != nil {
		return nil, err
	}

	user := toDomainUser(payload)

	err = app.userRepo.Create(ctx, &user)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			in.Logger.Warn("user already exists", "user_id", user.ID)
			return nil, events.NonRetriable(fmt.Errorf("create user %s: %w", user.ID, err))
		}

		return nil, fmt.Errorf("create user %s: %w", user.ID, err)
	}

	in.Logger.Info("user created", "user_id", user.ID)

	return userSyncResult{UserID: user.ID, Synced: true}, nil
}

// syncUserUpdate overwrites the stored fields of an existing user. A user
// that was never created is not created here.
func (app *Application) syncUserUpdate(ctx context.Context, in events.Input) (any, error) {
	var payload api.ClerkUser

	err := app.decodeEvent(in.Event, &payload)
	if err != nil {
		return nil, err
	}

	user := toDomainUser(payload)

	err = app.userRepo.Update(ctx, &user)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			in.Logger.Warn("updated user does not exist", "user_id", user.ID)
			return userSyncResult{UserID: user.ID}, nil
		case errors.Is(err, domain.ErrUserAlreadyExists):
			return nil, events.NonRetriable(fmt.Errorf("update user %s: %w", user.ID, err))
		default:
			return nil, fmt.Errorf("update user %s: %w", user.ID, err)
		}
	}

	in.Logger.Info("user updated", "user_id", user.ID)

	return userSyncResult{UserID: user.ID, Synced: true}, nil
}

func (app *Application) syncUserDeletion(ctx context.Context, in events.Input) (any, error) {
	var payload api.ClerkDeletedUser

	err := app.decodeEvent(in.Event, &payload)
	if err != nil {
		return nil, err
	}

	err = app.userRepo.Delete(ctx, payload.Id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			in.Logger.Info("deleted user does not exist", "user_id", payload.Id)
			return userSyncResult{UserID: payload.Id}, nil
		}

		return nil, fmt.Errorf("delete user %s: %w", payload.Id, err)
	}

	in.Logger.Info("user deleted", "user_id", payload.Id)

	return userSyncResult{UserID: payload.Id, Synced: true}, nil
}
