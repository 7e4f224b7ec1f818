package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumeo-dev/lumeo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const popularPage = `{
  "results": [
    {
      "id": 157336,
      "title": "Interstellar",
      "overview": "A team travels through a wormhole.",
      "release_date": "2014-11-05",
      "genre_ids": [878, 12, 18]
    },
    {
      "id": 0,
      "title": "",
      "overview": "entry without a title is skipped",
      "release_date": "",
      "genre_ids": []
    },
    {
      "id": 603,
      "title": "The Matrix",
      "overview": "A hacker learns the truth.",
      "release_date": "bad-date",
      "genre_ids": [28, 10770]
    }
  ],
  "total_pages": 500
}`

func TestPopular(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{
			"api_key": r.URL.Query().Get("api_key"),
			"page":    r.URL.Query().Get("page"),
		}
		w.Write([]byte(popularPage))
	}))
	defer server.Close()

	client := New(&config.Tmdb{ApiKey: "secret", BaseURL: server.URL})
	movies, err := client.Popular(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "/movie/popular", gotPath)
	assert.Equal(t, "secret", gotQuery["api_key"])
	assert.Equal(t, "2", gotQuery["page"])

	require.Len(t, movies, 2, "untitled entries are dropped")
	assert.Equal(t, "Interstellar", movies[0].Title)
	assert.Equal(t, int64(157336), movies[0].TmdbId)
	assert.Equal(t, "sci-fi, adventure, drama", movies[0].Genres)
	assert.Equal(t, 2014, movies[0].ReleaseYear)

	// Unknown genre ids and an unparseable date degrade to empty values.
	assert.Equal(t, "action", movies[1].Genres)
	assert.Equal(t, 0, movies[1].ReleaseYear)
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "matrix", r.URL.Query().Get("query"))
		w.Write([]byte(`{"results": [], "total_pages": 0}`))
	}))
	defer server.Close()

	client := New(&config.Tmdb{ApiKey: "secret", BaseURL: server.URL})
	movies, err := client.Search(context.Background(), "matrix", 1)
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestPopular_NoApiKey(t *testing.T) {
	client := New(&config.Tmdb{})
	_, err := client.Popular(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoApiKey)
}

func TestPopular_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(&config.Tmdb{ApiKey: "bad", BaseURL: server.URL})
	_, err := client.Popular(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
