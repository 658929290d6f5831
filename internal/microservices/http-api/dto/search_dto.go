package dto

import "mediahub/internal/catalog"

// ItemResponse is a catalog hit with display helpers resolved.
type ItemResponse struct {
	catalog.Item
	PosterURL    string `json:"poster_url"`
	RatingColour string `json:"rating_colour"`
}

func FromItem(it catalog.Item) ItemResponse {
	poster := it.PosterPath
	switch {
	case it.Kind == catalog.KindMovie || it.Kind == "":
		poster = catalog.PosterURL(it.PosterPath, "")
	case poster == "":
		poster = catalog.PosterPlaceholder
	}
	return ItemResponse{
		Item:         it,
		PosterURL:    poster,
		RatingColour: catalog.RatingColour(it.VoteAverage),
	}
}

type SearchResponse struct {
	Query   string         `json:"query,omitempty"`
	Results []ItemResponse `json:"results"`
	Total   int            `json:"total"`
}

func NewSearchResponse(query string, items []catalog.Item) SearchResponse {
	results := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		results = append(results, FromItem(it))
	}
	return SearchResponse{Query: query, Results: results, Total: len(results)}
}
