package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const DefaultRAWGBaseURL = "https://api.rawg.io/api"

const rawgPageSize = 20

// RAWG is the game catalog client.
type RAWG struct {
	client *httpClient
	apiKey string
}

func NewRAWG(cfg ClientConfig) *RAWG {
	return &RAWG{
		client: newHTTPClient("rawg", DefaultRAWGBaseURL, cfg),
		apiKey: cfg.APIKey,
	}
}

type rawgGame struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Released        string  `json:"released"`
	BackgroundImage *string `json:"background_image"`
	Rating          float64 `json:"rating"`
	Metacritic      *int    `json:"metacritic"`
	Playtime        int     `json:"playtime"`
	Description     string  `json:"description_raw"`
}

type rawgListResponse struct {
	Count   int        `json:"count"`
	Results []rawgGame `json:"results"`
}

func (g rawgGame) toItem() Item {
	it := Item{
		ID:          g.ID,
		Kind:        KindGame,
		Title:       g.Name,
		Overview:    g.Description,
		ReleaseDate: g.Released,
		ReleaseYear: yearOf(g.Released),
		VoteAverage: g.Rating,
		Metacritic:  g.Metacritic,
		Playtime:    g.Playtime,
	}
	if g.BackgroundImage != nil {
		it.PosterPath = *g.BackgroundImage
		it.BackdropPath = *g.BackgroundImage
	}
	return it
}

// Search queries /games. A blank query returns no results.
func (r *RAWG) Search(ctx context.Context, query string) ([]Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Item{}, nil
	}
	params := r.params()
	params.Set("search", query)
	return r.list(ctx, "search", params)
}

// Popular returns the highest rated games.
func (r *RAWG) Popular(ctx context.Context) ([]Item, error) {
	params := r.params()
	params.Set("ordering", "-rating")
	return r.list(ctx, "popular", params)
}

// Details fetches one game by id.
func (r *RAWG) Details(ctx context.Context, id int64) (*Item, error) {
	var g rawgGame
	if err := r.client.getJSON(ctx, "details", fmt.Sprintf("/games/%d", id), r.params(), &g); err != nil {
		return nil, err
	}
	it := g.toItem()
	return &it, nil
}

func (r *RAWG) params() url.Values {
	params := url.Values{}
	params.Set("key", r.apiKey)
	params.Set("page_size", strconv.Itoa(rawgPageSize))
	return params
}

func (r *RAWG) list(ctx context.Context, op string, params url.Values) ([]Item, error) {
	var resp rawgListResponse
	if err := r.client.getJSON(ctx, op, "/games", params, &resp); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(resp.Results))
	for _, g := range resp.Results {
		items = append(items, g.toItem())
	}
	return items, nil
}
