package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-ticket-events/internal/domain"
)

type PostgresShowRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowRepository(db *pgxpool.Pool) *PostgresShowRepository {
	return &PostgresShowRepository{
		db: db,
	}
}

func (p *PostgresShowRepository) GetById(ctx context.Context, id string) (*domain.Show, error) {
	query := `
		SELECT id, movie_id, start_time, price, occupied_seats, version
		FROM shows
		WHERE id = $1
	`

	var show domain.Show

	err := p.db.QueryRow(ctx, query, id).Scan(
		&show.ID,
		&show.MovieID,
		&show.StartTime,
		&show.Price,
		&show.OccupiedSeats,
		&show.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	if show.OccupiedSeats == nil {
		show.OccupiedSeats = make(map[string]string)
	}

	return &show, nil
}

// GetStartingBetween returns the shows starting in [from, to) with their
// movie attached. Movie is nil when the referenced movie no longer exists.
func (p *PostgresShowRepository) GetStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Show, error) {
	query := `
		SELECT
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
			m.runtime
		FROM shows s
		LEFT JOIN movies m ON s.movie_id = m.id
		WHERE s.start_time >= $1 AND s.start_time < $2
		ORDER BY s.start_time, s.id
	`

	rows, err := p.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shows := make([]domain.Show, 0)

	for rows.Next() {
		var show domain.Show
		var (
			movieId     *string
			title       *string
			overview    *string
			posterUrl   *string
			releaseDate *time.Time
			runtime     *int
		)

		err = rows.Scan(
			&show.ID,
			&show.MovieID,
			&show.StartTime,
			&show.Price,
			&show.OccupiedSeats,
			&show.Version,
			&movieId,
			&title,
			&overview,
			&posterUrl,
			&releaseDate,
			&runtime,
		)
		if err != nil {
			return nil, err
		}

		if movieId != nil {
			show.Movie = &domain.Movie{
				ID:          *movieId,
				Title:       deref(title),
				Overview:    deref(overview),
				PosterUrl:   deref(posterUrl),
				ReleaseDate: deref(releaseDate),
				Runtime:     deref(runtime),
			}
		}

		shows = append(shows, show)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return shows, nil
}

// UpdateOccupiedSeats stores the show's seat map if nobody changed the show
// since it was read, and bumps its version.
func (p *PostgresShowRepository) UpdateOccupiedSeats(ctx context.Context, show *domain.Show) error {
	query := `
		UPDATE shows
		SET occupied_seats = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	seats := show.OccupiedSeats
	if seats == nil {
		seats = make(map[string]string)
	}

	err := p.db.QueryRow(ctx, query, seats, show.ID, show.Version).Scan(&show.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEditConflict
		}

		return err
	}

	return nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}

	return *v
}
