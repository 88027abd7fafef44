package postgres

import (
	"context"
	"database/sql"

	"rutregistro/internal/model"
	"rutregistro/internal/repository"
)

// RecordPostgres is a PostgreSQL implementation of repository.RecordRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type RecordPostgres struct {
	db *sql.DB
}

// NewRecordPostgres creates a new RecordPostgres repository.
func NewRecordPostgres(db *sql.DB) *RecordPostgres {
	return &RecordPostgres{db: db}
}

var _ repository.RecordRepository = (*RecordPostgres)(nil)

const recordColumns = `id, name, last_name, rut, region, comune, visible_date, system_date`

// Create appends a new record row and returns the stored record.
func (r *RecordPostgres) Create(ctx context.Context, rec *model.Record) (*model.Record, error) {
	const q = `
		INSERT INTO records (id, name, last_name, rut, region, comune, visible_date, system_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + recordColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.Name,
		rec.LastName,
		rec.RUT,
		rec.Region,
		rec.Comune,
		rec.VisibleDate,
		rec.SystemDate,
	)
	var out model.Record
	if err := scanRecord(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns records newest first using LIMIT/OFFSET pagination and a total count.
func (r *RecordPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Record], error) {
	const qCount = `SELECT COUNT(*) FROM records`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + recordColumns + `
		FROM records
		ORDER BY system_date DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collectRecords(rows)
	if err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Record]{
		Items: items,
		Total: total,
	}, nil
}

// Snapshot returns every record, newest first.
func (r *RecordPostgres) Snapshot(ctx context.Context) ([]model.Record, error) {
	const q = `
		SELECT ` + recordColumns + `
		FROM records
		ORDER BY system_date DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner, rec *model.Record) error {
	return s.Scan(
		&rec.ID,
		&rec.Name,
		&rec.LastName,
		&rec.RUT,
		&rec.Region,
		&rec.Comune,
		&rec.VisibleDate,
		&rec.SystemDate,
	)
}

func collectRecords(rows *sql.Rows) ([]model.Record, error) {
	items := make([]model.Record, 0)
	for rows.Next() {
		var rec model.Record
		if err := scanRecord(rows, &rec); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
