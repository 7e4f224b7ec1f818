// Package tmdb is a thin client for The Movie Database API, used to
// seed the movie catalog.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lumeo-dev/lumeo/internal/config"
	"github.com/lumeo-dev/lumeo/internal/domain"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// TMDB reports genres as numeric ids on list endpoints. The mapping is
// the subset the query parser understands.
var genreNames = map[int64]string{
	28:    "action",
	12:    "adventure",
	35:    "comedy",
	99:    "documentary",
	18:    "drama",
	14:    "fantasy",
	27:    "horror",
	10749: "romantic",
	878:   "sci-fi",
	53:    "thriller",
}

var ErrNoApiKey = errors.New("tmdb api key is not configured")

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func New(cfg *config.Tmdb) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  cfg.ApiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type listResponse struct {
	Results []struct {
		Id          int64   `json:"id"`
		Title       string  `json:"title"`
		Overview    string  `json:"overview"`
		ReleaseDate string  `json:"release_date"`
		GenreIds    []int64 `json:"genre_ids"`
	} `json:"results"`
	TotalPages int `json:"total_pages"`
}

// Popular fetches one page of the popular-movies listing.
func (c *Client) Popular(ctx context.Context, page int) ([]domain.Movie, error) {
	return c.list(ctx, "/movie/popular", url.Values{}, page)
}

// Search fetches one page of title-search results.
func (c *Client) Search(ctx context.Context, query string, page int) ([]domain.Movie, error) {
	return c.list(ctx, "/search/movie", url.Values{"query": {query}}, page)
}

func (c *Client) list(ctx context.Context, path string, params url.Values, page int) ([]domain.Movie, error) {
	if c.apiKey == "" {
		return nil, ErrNoApiKey
	}
	if page < 1 {
		page = 1
	}
	params.Set("api_key", c.apiKey)
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tmdb request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb responded with status %d", resp.StatusCode)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode tmdb response: %w", err)
	}

	movies := make([]domain.Movie, 0, len(body.Results))
	for _, r := range body.Results {
		if r.Title == "" {
			continue
		}
		movies = append(movies, domain.Movie{
			TmdbId:      r.Id,
			Title:       r.Title,
			Genres:      joinGenres(r.GenreIds),
			ReleaseYear: releaseYear(r.ReleaseDate),
			Description: r.Overview,
		})
	}
	return movies, nil
}

func joinGenres(ids []int64) string {
	var names []string
	for _, id := range ids {
		if name, ok := genreNames[id]; ok {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
