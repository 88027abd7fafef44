package postgres

import (
	"context"
	"errors"
	"testing"

	"rutregistro/internal/model"
	"rutregistro/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var recordCols = []string{"id", "name", "last_name", "rut", "region", "comune", "visible_date", "system_date"}

func TestRecordPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()

	rec := &model.Record{
		ID:          "test-uuid",
		Name:        "María",
		LastName:    "González",
		RUT:         "123456785",
		Region:      "Valparaíso",
		Comune:      "Viña del Mar",
		VisibleDate: "27-08-2026",
		SystemDate:  1772150400000,
	}

	rows := sqlmock.NewRows(recordCols).
		AddRow(rec.ID, rec.Name, rec.LastName, rec.RUT, rec.Region, rec.Comune, rec.VisibleDate, rec.SystemDate)

	mock.ExpectQuery("INSERT INTO records").
		WithArgs(rec.ID, rec.Name, rec.LastName, rec.RUT, rec.Region, rec.Comune, rec.VisibleDate, rec.SystemDate).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, rec)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, rec.RUT, result.RUT)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM records").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		rows := sqlmock.NewRows(recordCols).
			AddRow("id-2", "Ana", "Soto", "76543216", "Maule", "Talca", "27-08-2026", 200).
			AddRow("id-1", "Juan", "Pérez", "111111111", "Biobío", "Tomé", "26-08-2026", 100)

		mock.ExpectQuery("SELECT (.+) FROM records ORDER BY system_date DESC").
			WithArgs(10, 0).
			WillReturnRows(rows)

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, "id-2", res.Items[0].ID)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM records").
			WillReturnError(errors.New("db down"))

		_, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.Error(t, err)
	})
}

func TestRecordPostgres_Snapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRecordPostgres(db)
	ctx := context.Background()

	t.Run("returns all records newest first", func(t *testing.T) {
		rows := sqlmock.NewRows(recordCols).
			AddRow("id-2", "Ana", "Soto", "76543216", "Maule", "Talca", "27-08-2026", 200).
			AddRow("id-1", "Juan", "Pérez", "111111111", "Biobío", "Tomé", "26-08-2026", 100)

		mock.ExpectQuery("SELECT (.+) FROM records ORDER BY system_date DESC").
			WillReturnRows(rows)

		records, err := repo.Snapshot(ctx)

		assert.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Greater(t, records[0].SystemDate, records[1].SystemDate)
	})

	t.Run("empty registry yields empty slice", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM records ORDER BY system_date DESC").
			WillReturnRows(sqlmock.NewRows(recordCols))

		records, err := repo.Snapshot(ctx)

		assert.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})
}
