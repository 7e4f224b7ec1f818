package pg

import (
	"fmt"

	"github.com/lumeo-dev/lumeo/internal/domain"
)

const movieColumns = "id, tmdb_id, title, genres, actors, directors, release_year, description, created_at"

// ListMovies returns the whole catalog. The recommender holds it in
// memory; the table is small enough that paging would only complicate
// the reload.
func (s *Storage) ListMovies() ([]domain.Movie, error) {
	rows, err := s.db.Query("SELECT " + movieColumns + " FROM movies ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var out []domain.Movie
	for rows.Next() {
		var m domain.Movie
		if err := rows.Scan(&m.Id, &m.TmdbId, &m.Title, &m.Genres, &m.Actors, &m.Directors, &m.ReleaseYear, &m.Description, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpsertMovie inserts or refreshes a catalog entry. Identity is
// (title, release year), so re-running a sync updates in place instead
// of duplicating.
func (s *Storage) UpsertMovie(m domain.Movie) error {
	_, err := s.db.Exec(`
        INSERT INTO movies (tmdb_id, title, genres, actors, directors, release_year, description)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (lower(title), release_year) DO UPDATE
        SET tmdb_id = EXCLUDED.tmdb_id,
            genres = EXCLUDED.genres,
            actors = EXCLUDED.actors,
            directors = EXCLUDED.directors,
            description = EXCLUDED.description`,
		m.TmdbId, m.Title, m.Genres, m.Actors, m.Directors, m.ReleaseYear, m.Description)
	if err != nil {
		return fmt.Errorf("failed to upsert movie: %w", err)
	}
	return nil
}

func (s *Storage) SaveMovieQuery(q domain.MovieQuery) (domain.MovieQuery, error) {
	err := s.db.QueryRow(`
        INSERT INTO movie_queries (query, recommended_movies) VALUES ($1, $2)
        RETURNING id, created_at`,
		q.Query, q.Recommended).Scan(&q.Id, &q.CreatedAt)
	if err != nil {
		return domain.MovieQuery{}, fmt.Errorf("failed to insert movie query: %w", err)
	}
	return q, nil
}

// ListMovieQueries returns the query log, newest first.
func (s *Storage) ListMovieQueries(filter domain.ListFilter) ([]domain.MovieQuery, error) {
	rows, err := s.db.Query(`
        SELECT id, query, recommended_movies, created_at FROM movie_queries
        WHERE ($1 = '' OR query ILIKE '%' || $1 || '%')
        ORDER BY id DESC
        LIMIT $2 OFFSET $3`,
		filter.Search, limitOrDefault(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query movie queries: %w", err)
	}
	defer rows.Close()

	var out []domain.MovieQuery
	for rows.Next() {
		var q domain.MovieQuery
		if err := rows.Scan(&q.Id, &q.Query, &q.Recommended, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan movie query: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
