package dto

// ImportRequest carries the raw text of a Letterboxd export.
type ImportRequest struct {
	CSV string `json:"csv" binding:"required"`
}
