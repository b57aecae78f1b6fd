package repo

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/models"
)

const recordColumns = `id, user_id, training_name, category, hours, link, created_at, modified_at`

// ========================
// REPOSITORY STRUCT
// ========================

// RecordRepo persists CPE records. Every read and write is scoped by owner.
type RecordRepo struct {
	DB *sql.DB
}

func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{DB: db}
}

// ========================
// CREATE RECORD
// ========================

func (r *RecordRepo) Create(ctx context.Context, rec models.Record) (*models.Record, error) {
	row := r.DB.QueryRowContext(ctx,
		`INSERT INTO cpe_records (user_id, training_name, category, hours, link, created_at, modified_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+recordColumns,
		rec.UserID, rec.TrainingName, rec.Category, rec.Hours, rec.Link, rec.CreatedAt, rec.ModifiedAt,
	)
	return scanRecord(row)
}

// ========================
// GET RECORD BY ID
// ========================

// GetByID loads a record regardless of owner; callers check ownership.
func (r *RecordRepo) GetByID(ctx context.Context, id int) (*models.Record, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+recordColumns+`
		 FROM cpe_records
		 WHERE id = $1`,
		id,
	)
	return scanRecord(row)
}

// ========================
// LIST RECORDS FOR OWNER
// ========================

// List returns the owner's records newest first, bounded by f.
func (r *RecordRepo) List(ctx context.Context, ownerID int, f models.RecordFilter) ([]models.Record, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + recordColumns + ` FROM cpe_records WHERE user_id = $1`)
	args := []any{ownerID}

	if f.Start != nil {
		args = append(args, *f.Start)
		sb.WriteString(` AND created_at >= $` + strconv.Itoa(len(args)))
	}
	if f.End != nil {
		args = append(args, *f.End)
		sb.WriteString(` AND created_at <= $` + strconv.Itoa(len(args)))
	}
	sb.WriteString(` ORDER BY created_at DESC, id DESC`)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sb.WriteString(` LIMIT $` + strconv.Itoa(len(args)))
	}

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var rec models.Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.TrainingName, &rec.Category, &rec.Hours, &rec.Link, &rec.CreatedAt, &rec.ModifiedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ========================
// AGGREGATES
// ========================

// SumHours returns the owner's total hours, 0 when there are no records.
func (r *RecordRepo) SumHours(ctx context.Context, ownerID int) (float64, error) {
	var total float64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(hours), 0) FROM cpe_records WHERE user_id = $1`,
		ownerID,
	).Scan(&total)
	return total, err
}

func (r *RecordRepo) SumHoursByCategory(ctx context.Context, ownerID int) ([]models.CategoryHours, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT category, SUM(hours)
		 FROM cpe_records
		 WHERE user_id = $1
		 GROUP BY category
		 ORDER BY category`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CategoryHours
	for rows.Next() {
		var c models.CategoryHours
		if err := rows.Scan(&c.Category, &c.Hours); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Categories returns the distinct categories the owner has used, sorted.
func (r *RecordRepo) Categories(ctx context.Context, ownerID int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DISTINCT category FROM cpe_records WHERE user_id = $1 ORDER BY category`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ========================
// UPDATE RECORD
// ========================

// Update rewrites the mutable fields of rec. The row must belong to rec.UserID.
func (r *RecordRepo) Update(ctx context.Context, rec models.Record) (*models.Record, error) {
	row := r.DB.QueryRowContext(ctx,
		`UPDATE cpe_records
		 SET training_name = $1, category = $2, hours = $3, link = $4, modified_at = $5
		 WHERE id = $6 AND user_id = $7
		 RETURNING `+recordColumns,
		rec.TrainingName, rec.Category, rec.Hours, rec.Link, rec.ModifiedAt, rec.ID, rec.UserID,
	)
	return scanRecord(row)
}

// ========================
// DELETE RECORD
// ========================

func (r *RecordRepo) Delete(ctx context.Context, id, ownerID int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM cpe_records WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanRecord(row *sql.Row) (*models.Record, error) {
	rec := &models.Record{}
	err := row.Scan(&rec.ID, &rec.UserID, &rec.TrainingName, &rec.Category, &rec.Hours, &rec.Link, &rec.CreatedAt, &rec.ModifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}
