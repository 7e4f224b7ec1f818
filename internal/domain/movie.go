package domain

import "time"

// Movie is one catalog entry. Genres, actors and directors are stored
// as comma-separated lists; the recommender tokenizes them on read.
type Movie struct {
	Id          int64     `json:"id"`
	TmdbId      int64     `json:"tmdb_id,omitempty"`
	Title       string    `json:"title"`
	Genres      string    `json:"genres"`
	Actors      string    `json:"actors"`
	Directors   string    `json:"directors"`
	ReleaseYear int       `json:"release_year"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// MovieQuery is the stored log of one recommendation request: the raw
// query text and the comma-joined titles that were recommended for it.
type MovieQuery struct {
	Id          int64     `json:"id"`
	Query       string    `json:"query"`
	Recommended string    `json:"recommended_movies"`
	CreatedAt   time.Time `json:"created_at"`
}

// QueryIntent is what the parser extracts from a free-text query.
type QueryIntent struct {
	Genres    []string
	SimilarTo []string
	Actors    []string
	Directors []string
}

func (q QueryIntent) Empty() bool {
	return len(q.Genres) == 0 && len(q.SimilarTo) == 0 && len(q.Actors) == 0 && len(q.Directors) == 0
}

// Recommendation is the response payload: a human-readable summary plus
// the flat title list.
type Recommendation struct {
	Response string   `json:"response,omitempty"`
	Movies   []string `json:"recommended_movies"`
}
