package integration_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"runId":     {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func compareResponse(t testing.TB, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func truncateAll(t testing.TB, db *pgxpool.Pool) {
	_, err := db.Exec(context.Background(), "TRUNCATE TABLE bookings, shows, movies, users CASCADE")
	require.NoError(t, err)
}

func insertTestUser(t testing.TB, db *pgxpool.Pool, id, name, email string) {
	_, err := db.Exec(context.Background(),
		"INSERT INTO users (id, email, name) VALUES ($1, $2, $3)",
		id, email, name)
	require.NoError(t, err)
}

func insertTestMovie(t testing.TB, db *pgxpool.Pool) {
	_, err := db.Exec(context.Background(),
		"INSERT INTO movies (id, title, runtime) VALUES ($1, $2, $3)",
		TestMovieId, TestMovieTitle, 155)
	require.NoError(t, err)
}

func insertTestShow(t testing.TB, db *pgxpool.Pool, id string, startTime time.Time, seats map[string]string) {
	_, err := db.Exec(context.Background(),
		"INSERT INTO shows (id, movie_id, start_time, price, occupied_seats) VALUES ($1, $2, $3, $4, $5)",
		id, TestMovieId, startTime, "12.25", seats)
	require.NoError(t, err)
}

func insertTestBooking(t testing.TB, db *pgxpool.Pool, isPaid bool) {
	_, err := db.Exec(context.Background(),
		"INSERT INTO bookings (id, user_id, show_id, booked_seats, amount, is_paid) VALUES ($1, $2, $3, $4, $5, $6)",
		TestBookingId, TestUserId, TestShowId, TestBookedSeats, TestAmount, isPaid)
	require.NoError(t, err)
}

// insertBookedShow creates a user holding TestBookedSeats on TestShowId next
// to a seat of another user.
func insertBookedShow(t testing.TB, db *pgxpool.Pool, startTime time.Time, isPaid bool) {
	insertTestUser(t, db, TestUserId, TestUserName, TestUserEmail)
	insertTestUser(t, db, TestOtherUserId, TestOtherUserName, TestOtherUserEmail)
	insertTestMovie(t, db)
	insertTestShow(t, db, TestShowId, startTime, map[string]string{
		"G12": TestUserId,
		"G13": TestUserId,
		"A1":  TestOtherUserId,
	})
	insertTestBooking(t, db, isPaid)
}

func occupiedSeats(t testing.TB, db *pgxpool.Pool, showId string) map[string]string {
	var seats map[string]string

	err := db.QueryRow(context.Background(),
		"SELECT occupied_seats FROM shows WHERE id = $1", showId).Scan(&seats)
	require.NoError(t, err)

	return seats
}

func bookingExists(t testing.TB, db *pgxpool.Pool, id string) bool {
	var exists bool

	err := db.QueryRow(context.Background(),
		"SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)", id).Scan(&exists)
	require.NoError(t, err)

	return exists
}

type userRow struct {
	Email string
	Name  string
	Image string
}

func findUser(t testing.TB, db *pgxpool.Pool, id string) (userRow, bool) {
	var row userRow

	err := db.QueryRow(context.Background(),
		"SELECT email, name, image FROM users WHERE id = $1", id).Scan(&row.Email, &row.Name, &row.Image)
	if errors.Is(err, pgx.ErrNoRows) {
		return row, false
	}
	require.NoError(t, err)

	return row, true
}
