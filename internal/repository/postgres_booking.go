package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-ticket-events/internal/domain"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

func (p *PostgresBookingRepository) GetById(ctx context.Context, id string) (*domain.Booking, error) {
	query := `
		SELECT id, user_id, show_id, booked_seats, amount, is_paid, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var booking domain.Booking

	err := p.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ShowID,
		&booking.BookedSeats,
		&booking.Amount,
		&booking.IsPaid,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) GetDetailsById(ctx context.Context, id string) (*domain.BookingDetails, error) {
	query := `
		SELECT
			b.id,
			b.user_id,
			b.show_id,
			b.booked_seats,
			b.amount,
			b.is_paid,
			b.created_at,
			b.updated_at,
			s.id,
			s.movie_id,
			s.start_time,
			s.price,
			s.occupied_seats,
			s.version,
			m.id,
			m.title,
			m.overview,
			m.poster_url,
			m.release_date,
			m.runtime,
			u.id,
			u.email,
			u.name,
			u.image,
			u.created_at,
			u.updated_at
		FROM bookings b
		JOIN shows s ON b.show_id = s.id
		JOIN movies m ON s.movie_id = m.id
		JOIN users u ON b.user_id = u.id
		WHERE b.id = $1
	`

	var details domain.BookingDetails

	err := p.db.QueryRow(ctx, query, id).Scan(
		&details.Booking.ID,
		&details.Booking.UserID,
		&details.Booking.ShowID,
		&details.Booking.BookedSeats,
		&details.Booking.Amount,
		&details.Booking.IsPaid,
		&details.Booking.CreatedAt,
		&details.Booking.UpdatedAt,
		&details.Show.ID,
		&details.Show.MovieID,
		&details.Show.StartTime,
		&details.Show.Price,
		&details.Show.OccupiedSeats,
		&details.Show.Version,
		&details.Movie.ID,
		&details.Movie.Title,
		&details.Movie.Overview,
		&details.Movie.PosterUrl,
		&details.Movie.ReleaseDate,
		&details.Movie.Runtime,
		&details.User.ID,
		&details.User.Email,
		&details.User.Name,
		&details.User.Image,
		&details.User.CreatedAt,
		&details.User.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	details.Show.Movie = &details.Movie

	return &details, nil
}

// MarkPaid flags the booking as paid. Marking an already paid booking is
// not an error.
func (p *PostgresBookingRepository) MarkPaid(ctx context.Context, id string) error {
	query := `
		UPDATE bookings
		SET is_paid = TRUE, updated_at = NOW()
		WHERE id = $1
	`

	result, err := p.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

// DeleteUnpaid removes the booking only while it is still unpaid. A paid or
// missing booking yields ErrRecordNotFound.
func (p *PostgresBookingRepository) DeleteUnpaid(ctx context.Context, id string) error {
	query := `DELETE FROM bookings WHERE id = $1 AND is_paid = FALSE`

	result, err := p.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
