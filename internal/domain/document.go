package domain

import (
	"context"
	"errors"
)

// Collections
const (
	CollectionSkillCategories  = "skillCategories"
	CollectionCategoryRequests = "categoryRequests"
	CollectionPortfolios       = "portfolios"
	CollectionUsers            = "users"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentExists   = errors.New("document already exists")

	// ErrPreconditionFailed is returned by UpdateIf when the stored document
	// no longer matches the expected fields.
	ErrPreconditionFailed = errors.New("document does not match expected state")
)

// Document is a JSON-shaped record. Numbers decode as float64.
type Document map[string]interface{}

// Query selects documents whose top-level fields equal every Where entry,
// sorted by OrderBy (ties broken by id).
type Query struct {
	Where   map[string]interface{}
	OrderBy string
	Desc    bool
}

// DocumentGateway is the persistence contract the core consumes. Both
// implementations replace the ServerTimestamp token with the write time,
// stored as a fixed-width UTC string so that ordering by it is chronological.
type DocumentGateway interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string, q Query) ([]Document, error)
	// Create stores doc under doc["id"] when present, otherwise under a new id.
	Create(ctx context.Context, collection string, doc Document) (string, error)
	// Update merges the top-level fields of patch into the stored document.
	Update(ctx context.Context, collection, id string, patch Document) error
	// UpdateIf applies patch like Update, but only while every field of
	// expect equals the stored value. The check and write are one atomic step.
	UpdateIf(ctx context.Context, collection, id string, expect, patch Document) error
	Delete(ctx context.Context, collection, id string) error
	// IncrementField adds delta to a numeric field atomically.
	IncrementField(ctx context.Context, collection, id, field string, delta int64) error
	ServerTimestamp() interface{}
}

// TimestampLayout is how resolved server timestamps are stored.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"
