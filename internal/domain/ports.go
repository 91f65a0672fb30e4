package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type RecordRepository interface {
	// Write paths
	UpsertRecord(ctx context.Context, rec PropertyRecord) error
	LogRejection(ctx context.Context, rep RejectionReport) error

	// Read paths
	GetRecord(ctx context.Context, id string) (PropertyRecord, error)
	ListRecords(ctx context.Context, q RecordsQuery) (RecordsPage, error)
	Stats(ctx context.Context) (Stats, error)
}

// ListingSource yields the crawler's output: listing id to a loosely-typed record.
type ListingSource interface {
	Listings(ctx context.Context) (map[string]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries
type RecordsQuery struct {
	City         *string
	PropertyType *string
	Operation    *string
	Status       *string
	MinPrice     *float64
	MaxPrice     *float64
	Q            *string
	Limit        int
	Cursor       *string
}

type RecordsPage struct {
	Items      []PropertyRecord `json:"items"`
	NextCursor *string          `json:"next_cursor,omitempty"`
}

type Bucket struct {
	Key      string   `json:"key"`
	Count    int      `json:"count"`
	AvgPrice *float64 `json:"avg_price,omitempty"`
}

type Stats struct {
	Total       int      `json:"total"`
	Accepted    int      `json:"accepted"`
	Rejected    int      `json:"rejected"`
	GateRejects int      `json:"gate_rejections"`
	AvgQuality  *float64 `json:"avg_quality,omitempty"`
	ByCity      []Bucket `json:"by_city"`
	ByType      []Bucket `json:"by_property_type"`
	ByOperation []Bucket `json:"by_operation"`
}
