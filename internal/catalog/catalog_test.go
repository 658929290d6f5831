package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediahub/internal/cache"
)

func testConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:      baseURL,
		APIKey:       "test-key",
		RateLimit:    1000,
		RateBurst:    100,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestTMDB_Search(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/search/movie", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("api_key"))
		assert.Equal(t, "Heat 1995", q.Get("query"))
		assert.Equal(t, "false", q.Get("include_adult"))
		assert.Equal(t, "en-US", q.Get("language"))
		assert.Equal(t, "1", q.Get("page"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"page":1,"total_results":2,"results":[
			{"id":949,"title":"Heat","overview":"LA crime","poster_path":"/heat.jpg","backdrop_path":null,"release_date":"1995-12-15","vote_average":7.9},
			{"id":1,"title":"Heat","poster_path":null,"release_date":"","vote_average":0}
		]}`))
	}))
	defer srv.Close()

	items, err := NewTMDB(testConfig(srv.URL)).Search(context.Background(), "  Heat 1995 ")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, int64(949), items[0].ID)
	assert.Equal(t, KindMovie, items[0].Kind)
	assert.Equal(t, "/heat.jpg", items[0].PosterPath)
	assert.Empty(t, items[0].BackdropPath)
	assert.Equal(t, 1995, items[0].ReleaseYear)
	assert.InDelta(t, 7.9, items[0].VoteAverage, 1e-9)

	assert.Empty(t, items[1].PosterPath)
	assert.Equal(t, 0, items[1].ReleaseYear)
	assert.Equal(t, int32(1), hits.Load())
}

func TestTMDB_BlankQuerySkipsRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	items, err := NewTMDB(testConfig(srv.URL)).Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.Equal(t, int32(0), hits.Load())
}

func TestTMDB_NotFoundIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status_message":"The resource you requested could not be found."}`))
	}))
	defer srv.Close()

	_, err := NewTMDB(testConfig(srv.URL)).Details(context.Background(), 42)
	require.Error(t, err)

	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "tmdb", ce.Provider)
	assert.Equal(t, "details", ce.Op)
	assert.Equal(t, http.StatusNotFound, ce.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch hits.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.Write([]byte(`{"results":[{"id":7,"title":"Se7en","release_date":"1995-09-22"}]}`))
		}
	}))
	defer srv.Close()

	items, err := NewTMDB(testConfig(srv.URL)).Search(context.Background(), "Se7en")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Se7en", items[0].Title)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 2
	_, err := NewTMDB(cfg).Search(context.Background(), "anything")

	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusInternalServerError, ce.StatusCode)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = -1
	client := NewRAWG(cfg)

	for i := 0; i < breakerFailureThreshold; i++ {
		_, err := client.Search(context.Background(), "doom")
		require.Error(t, err)
	}

	_, err := client.Search(context.Background(), "doom")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))

	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "rawg", ce.Provider)
	assert.Equal(t, int32(breakerFailureThreshold), hits.Load())
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewRAWG(testConfig(srv.URL))
	for i := 0; i < breakerFailureThreshold+2; i++ {
		_, err := client.Search(context.Background(), "doom")
		var ce *Error
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, http.StatusUnauthorized, ce.StatusCode)
	}
}

func TestClient_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := NewTMDB(testConfig(srv.URL)).Search(context.Background(), "x")
	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 0, ce.StatusCode)
	assert.Contains(t, err.Error(), "decode response")
}

func TestRAWG_SearchPopularDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		switch r.URL.Path {
		case "/games":
			assert.Equal(t, "20", q.Get("page_size"))
			if q.Get("ordering") == "-rating" {
				w.Write([]byte(`{"count":1,"results":[{"id":3328,"name":"The Witcher 3","released":"2015-05-18","background_image":"https://img/w3.jpg","rating":4.66,"metacritic":92,"playtime":46}]}`))
				return
			}
			assert.Equal(t, "portal", q.Get("search"))
			w.Write([]byte(`{"count":1,"results":[{"id":4200,"name":"Portal 2","released":"2011-04-18","background_image":null,"rating":4.6,"metacritic":null,"playtime":11}]}`))
		case "/games/4200":
			w.Write([]byte(`{"id":4200,"name":"Portal 2","released":"2011-04-18","description_raw":"Puzzles","metacritic":95}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewRAWG(testConfig(srv.URL))
	ctx := context.Background()

	found, err := client.Search(ctx, "portal")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, KindGame, found[0].Kind)
	assert.Equal(t, 2011, found[0].ReleaseYear)
	assert.Nil(t, found[0].Metacritic)
	assert.Empty(t, found[0].PosterPath)

	popular, err := client.Popular(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, "https://img/w3.jpg", popular[0].PosterPath)
	require.NotNil(t, popular[0].Metacritic)
	assert.Equal(t, 92, *popular[0].Metacritic)
	assert.Equal(t, 46, popular[0].Playtime)

	details, err := client.Details(ctx, 4200)
	require.NoError(t, err)
	assert.Equal(t, "Puzzles", details.Overview)
	require.NotNil(t, details.Metacritic)
	assert.Equal(t, 95, *details.Metacritic)
}

type countingSearcher struct {
	mu      sync.Mutex
	calls   []string
	results []Item
	err     error
}

func (s *countingSearcher) Search(_ context.Context, query string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func TestCached_ReadThrough(t *testing.T) {
	ctx := context.Background()
	next := &countingSearcher{results: []Item{{ID: 949, Kind: KindMovie, Title: "Heat", ReleaseYear: 1995}}}
	store := cache.NewMemory()
	c := NewCached("tmdb", next, store, time.Hour, nil)

	first, err := c.Search(ctx, "Heat")
	require.NoError(t, err)
	second, err := c.Search(ctx, "  heat ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, next.calls, 1)

	_, ok, _ := store.Get(ctx, "catalog:tmdb:search:heat")
	assert.True(t, ok)
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	next := &countingSearcher{err: &Error{Provider: "tmdb", Op: "search", StatusCode: 500}}
	store := cache.NewMemory()
	c := NewCached("tmdb", next, store, time.Hour, nil)

	_, err := c.Search(ctx, "Heat")
	require.Error(t, err)
	_, err = c.Search(ctx, "Heat")
	require.Error(t, err)

	assert.Len(t, next.calls, 2)
	assert.Equal(t, 0, store.Len())
}

func TestImageURLs(t *testing.T) {
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/a.jpg", PosterURL("/a.jpg", ""))
	assert.Equal(t, "https://image.tmdb.org/t/p/w185/a.jpg", PosterURL("/a.jpg", "w185"))
	assert.Equal(t, PosterPlaceholder, PosterURL("", "w500"))
	assert.Equal(t, "https://image.tmdb.org/t/p/original/b.jpg", BackdropURL("/b.jpg", ""))
	assert.Equal(t, BackdropPlaceholder, BackdropURL("", ""))
}

func TestRatingColour(t *testing.T) {
	assert.Equal(t, "#fff7e0", RatingColour(0))
	assert.Equal(t, "#ffc107", RatingColour(5))
	assert.Equal(t, "#ff5722", RatingColour(10))
	assert.Equal(t, "#ff5722", RatingColour(14))
	assert.Equal(t, "#fff7e0", RatingColour(-3))
	assert.Equal(t, RatingColour(7), RatingColour(7.4))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "tmdb search: HTTP 503", (&Error{Provider: "tmdb", Op: "search", StatusCode: 503}).Error())
	assert.Equal(t, "rawg details: boom", (&Error{Provider: "rawg", Op: "details", Err: errors.New("boom")}).Error())
}
