package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultTMDBBaseURL = "https://api.themoviedb.org/3"
	tmdbImageBaseURL   = "https://image.tmdb.org/t/p"

	PosterPlaceholder   = "/placeholder.svg"
	BackdropPlaceholder = "/placeholder-backdrop.svg"
)

// TMDB is the movie catalog client.
type TMDB struct {
	client *httpClient
	apiKey string
}

func NewTMDB(cfg ClientConfig) *TMDB {
	return &TMDB{
		client: newHTTPClient("tmdb", DefaultTMDBBaseURL, cfg),
		apiKey: cfg.APIKey,
	}
}

type tmdbMovie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
}

type tmdbSearchResponse struct {
	Page         int         `json:"page"`
	Results      []tmdbMovie `json:"results"`
	TotalResults int         `json:"total_results"`
}

func (m tmdbMovie) toItem() Item {
	it := Item{
		ID:          m.ID,
		Kind:        KindMovie,
		Title:       m.Title,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
		ReleaseYear: yearOf(m.ReleaseDate),
		VoteAverage: m.VoteAverage,
	}
	if m.PosterPath != nil {
		it.PosterPath = *m.PosterPath
	}
	if m.BackdropPath != nil {
		it.BackdropPath = *m.BackdropPath
	}
	return it
}

// Search queries /search/movie. A blank query returns no results without
// contacting the provider.
func (t *TMDB) Search(ctx context.Context, query string) ([]Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Item{}, nil
	}

	params := url.Values{}
	params.Set("api_key", t.apiKey)
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("language", "en-US")
	params.Set("page", "1")

	var resp tmdbSearchResponse
	if err := t.client.getJSON(ctx, "search", "/search/movie", params, &resp); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(resp.Results))
	for _, m := range resp.Results {
		items = append(items, m.toItem())
	}
	return items, nil
}

// Details fetches one movie by id.
func (t *TMDB) Details(ctx context.Context, id int64) (*Item, error) {
	params := url.Values{}
	params.Set("api_key", t.apiKey)
	params.Set("language", "en-US")

	var m tmdbMovie
	if err := t.client.getJSON(ctx, "details", fmt.Sprintf("/movie/%d", id), params, &m); err != nil {
		return nil, err
	}
	it := m.toItem()
	return &it, nil
}

// PosterURL builds the image URL for a poster path.
func PosterURL(path, size string) string {
	if path == "" {
		return PosterPlaceholder
	}
	if size == "" {
		size = "w500"
	}
	return tmdbImageBaseURL + "/" + size + path
}

// BackdropURL builds the image URL for a backdrop path.
func BackdropURL(path, size string) string {
	if path == "" {
		return BackdropPlaceholder
	}
	if size == "" {
		size = "original"
	}
	return tmdbImageBaseURL + "/" + size + path
}
