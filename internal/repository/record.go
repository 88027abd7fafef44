package repository

import (
	"context"

	"rutregistro/internal/model"
)

// RecordRepository defines data access for registry records using SQL
// queries only. No business logic here — strictly persistence operations.
// The collection is append-only: there is no update or delete.
type RecordRepository interface {
	// Create appends a new record. The caller provides ID, SystemDate and
	// VisibleDate; the row is immutable once written.
	Create(ctx context.Context, rec *model.Record) (*model.Record, error)

	// List returns a page of records ordered by system_date descending,
	// plus the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Record], error)

	// Snapshot returns every record, newest first. The admission pipeline
	// scans this set for duplicates.
	Snapshot(ctx context.Context) ([]model.Record, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
