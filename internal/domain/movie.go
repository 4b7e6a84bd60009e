package domain

import "time"

type Movie struct {
	ID          string
	Title       string
	Overview    string
	PosterUrl   string
	ReleaseDate time.Time
	Runtime     int
}
