package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/lumeo-dev/lumeo/internal/apperr"
	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/lumeo-dev/lumeo/internal/logger"
)

type RecommendStorage interface {
	ListMovies() ([]domain.Movie, error)
	UpsertMovie(m domain.Movie) error
	SaveMovieQuery(q domain.MovieQuery) (domain.MovieQuery, error)
	ListMovieQueries(filter domain.ListFilter) ([]domain.MovieQuery, error)
}

// MovieSource supplies catalog entries from an external provider.
type MovieSource interface {
	Popular(ctx context.Context, page int) ([]domain.Movie, error)
}

const maxQueryLen = 1000

var (
	genrePattern    = regexp.MustCompile(`(?i)\b(action|comedy|drama|thriller|horror|sci-fi|romantic|adventure|fantasy|documentary)\b`)
	similarPattern  = regexp.MustCompile(`(?i)similar to ([a-zA-Z0-9\s]+)`)
	actorPattern    = regexp.MustCompile(`(?i)starring ([a-zA-Z\s]+)`)
	directorPattern = regexp.MustCompile(`(?i)directed by ([a-zA-Z\s]+)`)
)

// parseQueryIntent extracts genres, reference titles, actors and
// directors from a free-text query.
func parseQueryIntent(query string) domain.QueryIntent {
	var intent domain.QueryIntent
	for _, m := range genrePattern.FindAllStringSubmatch(query, -1) {
		intent.Genres = append(intent.Genres, strings.ToLower(m[1]))
	}
	for _, m := range similarPattern.FindAllStringSubmatch(query, -1) {
		intent.SimilarTo = append(intent.SimilarTo, strings.TrimSpace(m[1]))
	}
	for _, m := range actorPattern.FindAllStringSubmatch(query, -1) {
		intent.Actors = append(intent.Actors, strings.TrimSpace(m[1]))
	}
	for _, m := range directorPattern.FindAllStringSubmatch(query, -1) {
		intent.Directors = append(intent.Directors, strings.TrimSpace(m[1]))
	}
	return intent
}

// Recommender answers free-text movie queries against an in-memory
// catalog and logs every answered query. The catalog lives in memory
// because similarity scoring touches every row; it is reloaded after a
// sync.
type Recommender struct {
	storage RecommendStorage
	source  MovieSource

	mu      sync.RWMutex
	catalog []domain.Movie
}

func NewRecommender(storage RecommendStorage, source MovieSource) (*Recommender, error) {
	r := &Recommender{storage: storage, source: source}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Recommender) reload() error {
	catalog, err := r.storage.ListMovies()
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.catalog = catalog
	r.mu.Unlock()
	return nil
}

// Recommend parses the query, collects matches per extracted entity and
// returns up to ten unique titles with a readable summary. Queries that
// match nothing are not logged.
func (r *Recommender) Recommend(query string) (domain.Recommendation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Recommendation{}, &apperr.Error{Message: "Query is required", StatusCode: http.StatusBadRequest}
	}
	if len(query) > maxQueryLen {
		return domain.Recommendation{}, &apperr.Error{Message: "Query is too long", StatusCode: http.StatusBadRequest}
	}

	intent := parseQueryIntent(query)

	r.mu.RLock()
	catalog := r.catalog
	r.mu.RUnlock()

	var recommended []string
	seen := make(map[string]bool)
	add := func(movies []domain.Movie) {
		for _, m := range movies {
			if !seen[m.Title] {
				seen[m.Title] = true
				recommended = append(recommended, m.Title)
			}
		}
	}

	var messages []string
	for _, title := range intent.SimilarTo {
		matches := similarByGenres(catalog, title, 10)
		if len(matches) == 0 {
			logger.Log.Warn("no catalog entry for reference title", "title", title)
			continue
		}
		add(matches)
		messages = append(messages, fmt.Sprintf("Since you enjoyed %s, here are some similar movies you might like:\n%s",
			title, bulletList(matches)))
	}
	for _, genre := range intent.Genres {
		matches := matchField(catalog, func(m domain.Movie) string { return m.Genres }, genre, 10)
		if len(matches) == 0 {
			continue
		}
		add(matches)
		messages = append(messages, fmt.Sprintf("For the %s genre, you might enjoy:\n%s", genre, bulletList(matches)))
	}
	for _, actor := range intent.Actors {
		matches := matchField(catalog, func(m domain.Movie) string { return m.Actors }, actor, 10)
		if len(matches) == 0 {
			continue
		}
		add(matches)
		messages = append(messages, fmt.Sprintf("Movies starring %s that you might like:\n%s", actor, bulletList(matches)))
	}
	for _, director := range intent.Directors {
		matches := matchField(catalog, func(m domain.Movie) string { return m.Directors }, director, 10)
		if len(matches) == 0 {
			continue
		}
		add(matches)
		messages = append(messages, fmt.Sprintf("Movies directed by %s that you might enjoy:\n%s", director, bulletList(matches)))
	}

	if len(recommended) == 0 {
		return domain.Recommendation{}, &apperr.Error{
			Message:    "I couldn't find any recommendations based on your query. Could you please try asking differently?",
			StatusCode: http.StatusNotFound,
		}
	}
	if len(recommended) > 10 {
		recommended = recommended[:10]
	}

	if _, err := r.storage.SaveMovieQuery(domain.MovieQuery{
		Query:       query,
		Recommended: strings.Join(recommended, ", "),
	}); err != nil {
		// The answer is still good; losing one log row is not.
		logger.Log.Warn("failed to log movie query", "error", err)
	}

	return domain.Recommendation{
		Response: strings.Join(messages, "\n\n"),
		Movies:   recommended,
	}, nil
}

// Queries exposes the query log for the admin dashboard.
func (r *Recommender) Queries(filter domain.ListFilter) ([]domain.MovieQuery, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return r.storage.ListMovieQueries(filter)
}

// SyncCatalog pulls popular movies from the source, upserts them and
// reloads the in-memory catalog. Returns how many entries were fetched.
func (r *Recommender) SyncCatalog(ctx context.Context, pages int) (int, error) {
	if pages < 1 {
		pages = 1
	}

	var fetched int
	for page := 1; page <= pages; page++ {
		movies, err := r.source.Popular(ctx, page)
		if err != nil {
			return fetched, fmt.Errorf("fetch page %d: %w", page, err)
		}
		for _, m := range movies {
			if err := r.storage.UpsertMovie(m); err != nil {
				return fetched, err
			}
			fetched++
		}
	}

	if err := r.reload(); err != nil {
		return fetched, err
	}
	logger.Log.Info("movie catalog synced", "fetched", fetched)
	return fetched, nil
}

// similarByGenres ranks the catalog by genre overlap with the named
// movie (cosine over genre token sets), excluding the movie itself.
func similarByGenres(catalog []domain.Movie, title string, top int) []domain.Movie {
	var ref *domain.Movie
	for i := range catalog {
		if strings.EqualFold(catalog[i].Title, title) {
			ref = &catalog[i]
			break
		}
	}
	if ref == nil {
		return nil
	}
	refGenres := tokenSet(ref.Genres)
	if len(refGenres) == 0 {
		return nil
	}

	type scored struct {
		movie domain.Movie
		score float64
	}
	var candidates []scored
	for _, m := range catalog {
		if m.Id == ref.Id {
			continue
		}
		genres := tokenSet(m.Genres)
		overlap := 0
		for g := range genres {
			if refGenres[g] {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		score := float64(overlap) / math.Sqrt(float64(len(refGenres))*float64(len(genres)))
		candidates = append(candidates, scored{m, score})
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > top {
		candidates = candidates[:top]
	}
	out := make([]domain.Movie, len(candidates))
	for i, c := range candidates {
		out[i] = c.movie
	}
	return out
}

func matchField(catalog []domain.Movie, field func(domain.Movie) string, term string, top int) []domain.Movie {
	var out []domain.Movie
	term = strings.ToLower(term)
	for _, m := range catalog {
		if strings.Contains(strings.ToLower(field(m)), term) {
			out = append(out, m)
			if len(out) == top {
				break
			}
		}
	}
	return out
}

func tokenSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Split(list, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		if token != "" {
			set[token] = true
		}
	}
	return set
}

// bulletList renders up to three titles with a short description
// snippet each.
func bulletList(movies []domain.Movie) string {
	if len(movies) > 3 {
		movies = movies[:3]
	}
	lines := make([]string, len(movies))
	for i, m := range movies {
		desc := m.Description
		if len(desc) > 100 {
			desc = desc[:100] + "..."
		}
		if desc == "" {
			lines[i] = fmt.Sprintf("- %s", m.Title)
			continue
		}
		lines[i] = fmt.Sprintf("- %s: %s", m.Title, desc)
	}
	return strings.Join(lines, "\n")
}
