package dto

import (
	"mediahub/internal/catalog"
	"mediahub/internal/rating"
)

type StartVersusRequest struct {
	Kind catalog.Kind `json:"kind" binding:"required,oneof=movie game"`
}

type ChooseRequest struct {
	Winner rating.Winner `json:"winner" binding:"required,oneof=A B"`
}
