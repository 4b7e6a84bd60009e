package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-ticket-events/internal/domain"
)

type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

func (p *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, email, name, image)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := p.db.QueryRow(ctx,
		query,
		user.ID,
		user.Email,
		user.Name,
		user.Image).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}

		return err
	}

	return nil
}

func (p *PostgresUserRepository) GetById(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, email, name, image, created_at, updated_at
		FROM users
		WHERE id = $1`

	var user domain.User

	err := p.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Image,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &user, nil
}

func (p *PostgresUserRepository) GetByIds(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}

	query := `SELECT id, email, name, image, created_at, updated_at
		FROM users
		WHERE id = ANY($1)
		ORDER BY id`

	return p.queryUsers(ctx, query, ids)
}

func (p *PostgresUserRepository) GetAll(ctx context.Context) ([]domain.User, error) {
	query := `SELECT id, email, name, image, created_at, updated_at
		FROM users
		ORDER BY created_at, id`

	return p.queryUsers(ctx, query)
}

func (p *PostgresUserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)

	for rows.Next() {
		var user domain.User

		err = rows.Scan(
			&user.ID,
			&user.Email,
			&user.Name,
			&user.Image,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (p *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users
		SET email = $1, name = $2, image = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING created_at, updated_at`

	err := p.db.QueryRow(ctx,
		query,
		user.Email,
		user.Name,
		user.Image,
		user.ID).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.ErrRecordNotFound
		case isUniqueViolation(err):
			return domain.ErrUserAlreadyExists
		default:
			return err
		}
	}

	return nil
}

func (p *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := p.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
