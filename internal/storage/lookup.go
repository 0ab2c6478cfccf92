package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignatij/trialtasks/pkg/models"
	"github.com/ignatij/trialtasks/pkg/storage"
	"github.com/pkg/errors"
)

// LookupRepository is bound to one of the five categorical tables.
type LookupRepository struct {
	db   DBInterface
	kind models.LookupKind
}

func (r *LookupRepository) table() (string, error) {
	if !r.kind.Valid() {
		return "", errors.Errorf("unknown lookup kind %q", r.kind)
	}
	return r.kind.Table(), nil
}

// Create inserts a new row and returns its id. Names are not deduplicated.
func (r *LookupRepository) Create(ctx context.Context, name string) (int64, error) {
	table, err := r.table()
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.db.QueryRowxContext(ctx,
		fmt.Sprintf("INSERT INTO %s (name) VALUES ($1) RETURNING id", table), name).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(classify(err), "save %s", table)
	}
	return id, nil
}

func (r *LookupRepository) Get(ctx context.Context, id int64) (models.Lookup, error) {
	table, err := r.table()
	if err != nil {
		return models.Lookup{}, err
	}
	var row models.Lookup
	err = r.db.GetContext(ctx, &row,
		fmt.Sprintf("SELECT id, name, created_at, updated_at FROM %s WHERE id = $1", table), id)
	if err == sql.ErrNoRows {
		return models.Lookup{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Lookup{}, errors.Wrapf(err, "get %s %d", table, id)
	}
	row.Kind = r.kind
	return row, nil
}

func (r *LookupRepository) List(ctx context.Context, name string, page models.Page) ([]models.Lookup, error) {
	table, err := r.table()
	if err != nil {
		return nil, err
	}
	rows := []models.Lookup{}
	query := fmt.Sprintf("SELECT id, name, created_at, updated_at FROM %s", table)
	args := []interface{}{}
	if name != "" {
		query += " WHERE name = $1"
		args = append(args, name)
	}
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset)
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrapf(err, "list %s", table)
	}
	for i := range rows {
		rows[i].Kind = r.kind
	}
	return rows, nil
}

func (r *LookupRepository) Count(ctx context.Context) (int, error) {
	table, err := r.table()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
		return 0, errors.Wrapf(err, "count %s", table)
	}
	return n, nil
}
