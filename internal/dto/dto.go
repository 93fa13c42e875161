package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Browser clients expect price as a JSON number, not a quoted string.
	decimal.MarshalJSONWithoutQuotes = true
}

// VideoGame is the read shape returned to clients.
type VideoGame struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Genre       string          `json:"genre"`
	Platform    string          `json:"platform"`
	ReleaseYear int             `json:"releaseYear"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}

// CreateVideoGameRequest is the payload for adding a game. Description and
// imageUrl are optional and default to empty.
type CreateVideoGameRequest struct {
	Title       string          `json:"title"`
	Genre       string          `json:"genre"`
	Platform    string          `json:"platform"`
	ReleaseYear int             `json:"releaseYear"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
}

// UpdateVideoGameRequest replaces every field of an existing game.
type UpdateVideoGameRequest CreateVideoGameRequest

// PagedResult is the wire shape of one page of results.
type PagedResult[T any] struct {
	Items           []T  `json:"items"`
	PageNumber      int  `json:"pageNumber"`
	PageSize        int  `json:"pageSize"`
	TotalCount      int  `json:"totalCount"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}
