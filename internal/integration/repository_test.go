package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/metinatakli/movie-ticket-events/internal/domain"
	"github.com/metinatakli/movie-ticket-events/internal/repository"
	"github.com/stretchr/testify/suite"
)

type RepositoryTestSuite struct {
	BaseSuite
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) TestUserRepository() {
	ctx := context.Background()
	repo := repository.NewPostgresUserRepository(s.app.DB)

	user := &domain.User{ID: TestUserId, Email: TestUserEmail, Name: TestUserName}
	s.Require().NoError(repo.Create(ctx, user))
	s.False(user.CreatedAt.IsZero())

	duplicate := &domain.User{ID: "user_other", Email: TestUserEmail, Name: "Someone Else"}
	s.ErrorIs(repo.Create(ctx, duplicate), domain.ErrUserAlreadyExists)

	s.Require().NoError(repo.Create(ctx, &domain.User{ID: TestOtherUserId, Email: TestOtherUserEmail, Name: TestOtherUserName}))

	users, err := repo.GetByIds(ctx, []string{TestOtherUserId, "missing"})
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal(TestOtherUserEmail, users[0].Email)

	all, err := repo.GetAll(ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	user.Name = "Farrokh Bulsara"
	s.Require().NoError(repo.Update(ctx, user))

	stored, err := repo.GetById(ctx, TestUserId)
	s.Require().NoError(err)
	s.Equal("Farrokh Bulsara", stored.Name)

	s.ErrorIs(repo.Update(ctx, &domain.User{ID: "missing", Email: "missing@example.com"}), domain.ErrRecordNotFound)

	s.Require().NoError(repo.Delete(ctx, TestUserId))
	s.ErrorIs(repo.Delete(ctx, TestUserId), domain.ErrRecordNotFound)

	_, err = repo.GetById(ctx, TestUserId)
	s.ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestShowRepository() {
	ctx := context.Background()
	repo := repository.NewPostgresShowRepository(s.app.DB)

	start := time.Now().Add(8 * time.Hour).Truncate(time.Second)
	insertBookedShow(s.T(), s.app.DB, start, false)

	show, err := repo.GetById(ctx, TestShowId)
	s.Require().NoError(err)
	s.Equal(1, show.Version)
	s.Equal("12.25", show.Price.StringFixed(2))
	s.Len(show.OccupiedSeats, 3)

	shows, err := repo.GetStartingBetween(ctx, start.Add(-10*time.Minute), start)
	s.Require().NoError(err)
	s.Empty(shows)

	shows, err = repo.GetStartingBetween(ctx, start.Add(-10*time.Minute), start.Add(time.Second))
	s.Require().NoError(err)
	s.Require().Len(shows, 1)
	s.Require().NotNil(shows[0].Movie)
	s.Equal(TestMovieTitle, shows[0].Movie.Title)

	stale := *show

	show.ReleaseSeats(TestUserId, []string{"G12"})
	s.Require().NoError(repo.UpdateOccupiedSeats(ctx, show))
	s.Equal(2, show.Version)

	s.ErrorIs(repo.UpdateOccupiedSeats(ctx, &stale), domain.ErrEditConflict)

	s.Equal(map[string]string{"G13": TestUserId, "A1": TestOtherUserId}, occupiedSeats(s.T(), s.app.DB, TestShowId))

	_, err = repo.GetById(ctx, "missing")
	s.ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestBookingRepository() {
	ctx := context.Background()
	repo := repository.NewPostgresBookingRepository(s.app.DB)

	insertBookedShow(s.T(), s.app.DB, time.Now().Add(48*time.Hour), false)

	booking, err := repo.GetById(ctx, TestBookingId)
	s.Require().NoError(err)
	s.Equal(TestBookedSeats, booking.BookedSeats)
	s.Equal(TestAmount, booking.Amount.StringFixed(2))
	s.False(booking.IsPaid)

	details, err := repo.GetDetailsById(ctx, TestBookingId)
	s.Require().NoError(err)
	s.Equal(TestUserEmail, details.User.Email)
	s.Equal(TestMovieTitle, details.Movie.Title)
	s.Equal(TestShowId, details.Show.ID)

	s.Require().NoError(repo.MarkPaid(ctx, TestBookingId))
	s.ErrorIs(repo.DeleteUnpaid(ctx, TestBookingId), domain.ErrRecordNotFound)
	s.True(bookingExists(s.T(), s.app.DB, TestBookingId))

	_, err = s.app.DB.Exec(ctx, "UPDATE bookings SET is_paid = FALSE WHERE id = $1", TestBookingId)
	s.Require().NoError(err)

	s.Require().NoError(repo.DeleteUnpaid(ctx, TestBookingId))
	s.False(bookingExists(s.T(), s.app.DB, TestBookingId))

	s.ErrorIs(repo.MarkPaid(ctx, TestBookingId), domain.ErrRecordNotFound)

	_, err = repo.GetDetailsById(ctx, TestBookingId)
	s.ErrorIs(err, domain.ErrRecordNotFound)
}
