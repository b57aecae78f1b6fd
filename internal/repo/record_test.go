package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/models"
)

var recordCols = []string{"id", "user_id", "training_name", "category", "hours", "link", "created_at", "modified_at"}

func TestRecordRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO cpe_records \(user_id, training_name, category, hours, link, created_at, modified_at\)`).
		WithArgs(1, "Security 101", "Security", 3.5, "", now, now).
		WillReturnRows(sqlmock.NewRows(recordCols).AddRow(10, 1, "Security 101", "Security", 3.5, "", now, now))

	repo := NewRecordRepo(db)
	rec, err := repo.Create(context.Background(), models.Record{
		UserID: 1, TrainingName: "Security 101", Category: "Security", Hours: 3.5, CreatedAt: now, ModifiedAt: now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID != 10 || rec.Hours != 3.5 || !rec.CreatedAt.Equal(now) {
		t.Errorf("unexpected record: %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRecordRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, training_name, category, hours, link, created_at, modified_at\s+FROM cpe_records\s+WHERE id = \$1`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	repo := NewRecordRepo(db)
	if _, err := repo.GetByID(context.Background(), 99); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRecordRepo_List_Unbounded(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	t1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM cpe_records WHERE user_id = \$1 ORDER BY created_at DESC, id DESC$`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(recordCols).
			AddRow(2, 1, "B", "General", 1.0, "", t1, t1).
			AddRow(1, 1, "A", "General", 2.0, "https://x", t2, t2))

	repo := NewRecordRepo(db)
	list, err := repo.List(context.Background(), 1, models.RecordFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].TrainingName != "B" || list[1].Link != "https://x" {
		t.Errorf("unexpected list: %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRecordRepo_List_DateRangeAndLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	mock.ExpectQuery(`WHERE user_id = \$1 AND created_at >= \$2 AND created_at <= \$3 ORDER BY created_at DESC, id DESC LIMIT \$4`).
		WithArgs(1, start, end, 5).
		WillReturnRows(sqlmock.NewRows(recordCols))

	repo := NewRecordRepo(db)
	list, err := repo.List(context.Background(), 1, models.RecordFilter{Start: &start, End: &end, Limit: 5})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRecordRepo_SumHours(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(hours\), 0\) FROM cpe_records WHERE user_id = \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0.0))

	repo := NewRecordRepo(db)
	total, err := repo.SumHours(context.Background(), 3)
	if err != nil {
		t.Fatalf("SumHours: %v", err)
	}
	if total != 0 {
		t.Errorf("SumHours: got %v, want 0", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRecordRepo_SumHoursByCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT category, SUM\(hours\)\s+FROM cpe_records\s+WHERE user_id = \$1\s+GROUP BY category`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"category", "sum"}).
			AddRow("Cloud", 2.0).
			AddRow("Security", 3.5))

	repo := NewRecordRepo(db)
	got, err := repo.SumHoursByCategory(context.Background(), 1)
	if err != nil {
		t.Fatalf("SumHoursByCategory: %v", err)
	}
	if len(got) != 2 || got[1].Category != "Security" || got[1].Hours != 3.5 {
		t.Errorf("unexpected aggregate: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRecordRepo_Categories(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT category FROM cpe_records WHERE user_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("Cloud").AddRow("General"))

	repo := NewRecordRepo(db)
	got, err := repo.Categories(context.Background(), 1)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(got) != 2 || got[0] != "Cloud" {
		t.Errorf("unexpected categories: %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRecordRepo_Update_ScopedByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mod := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`UPDATE cpe_records\s+SET training_name = \$1, category = \$2, hours = \$3, link = \$4, modified_at = \$5\s+WHERE id = \$6 AND user_id = \$7`).
		WithArgs("New", "Cloud", 1.5, "", mod, 4, 2).
		WillReturnError(sql.ErrNoRows)

	repo := NewRecordRepo(db)
	_, err = repo.Update(context.Background(), models.Record{
		ID: 4, UserID: 2, TrainingName: "New", Category: "Cloud", Hours: 1.5, ModifiedAt: mod,
	})
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign row, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRecordRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM cpe_records WHERE id = \$1 AND user_id = \$2`).
		WithArgs(4, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM cpe_records WHERE id = \$1 AND user_id = \$2`).
		WithArgs(4, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewRecordRepo(db)
	if err := repo.Delete(context.Background(), 4, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(context.Background(), 4, 1); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("second Delete: expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
