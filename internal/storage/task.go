package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ignatij/trialtasks/pkg/models"
	"github.com/ignatij/trialtasks/pkg/storage"
	"github.com/pkg/errors"
)

// selectTaskRecords joins a task with its five lookup rows. A NULL
// reference or a NULL name both resolve to an empty string.
const selectTaskRecords = `
	SELECT t.id, t.number, t.title, t.duration, t.number_of_target,
		t.department_id, t.institute_id, t.scope_id, t.trial_stage_id, t.type_id,
		t.created_at, t.updated_at,
		COALESCE(d.name, '') AS department,
		COALESCE(i.name, '') AS institute,
		COALESCE(s.name, '') AS scope,
		COALESCE(ts.name, '') AS trial_stage,
		COALESCE(ty.name, '') AS type
	FROM tasks t
	LEFT JOIN departments d ON d.id = t.department_id
	LEFT JOIN institutes i ON i.id = t.institute_id
	LEFT JOIN scopes s ON s.id = t.scope_id
	LEFT JOIN trial_stages ts ON ts.id = t.trial_stage_id
	LEFT JOIN types ty ON ty.id = t.type_id`

type TaskRepository struct {
	db DBInterface
}

// Create inserts a task and returns its id.
func (r *TaskRepository) Create(ctx context.Context, t models.Task) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO tasks (number, title, duration, number_of_target,
			department_id, institute_id, scope_id, trial_stage_id, type_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		t.Number, t.Title, t.Duration, t.NumberOfTarget,
		t.DepartmentID, t.InstituteID, t.ScopeID, t.TrialStageID, t.TypeID).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(classify(err), "save task %q", t.Number)
	}
	return id, nil
}

func (r *TaskRepository) Get(ctx context.Context, id int64) (models.TaskRecord, error) {
	var rec models.TaskRecord
	err := r.db.GetContext(ctx, &rec, selectTaskRecords+" WHERE t.id = $1", id)
	if err == sql.ErrNoRows {
		return models.TaskRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return models.TaskRecord{}, errors.Wrapf(err, "get task %d", id)
	}
	return rec, nil
}

func (r *TaskRepository) Search(ctx context.Context, f models.TaskFilter) ([]models.TaskRecord, error) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	sb.WriteString(selectTaskRecords)
	sb.WriteString(" WHERE 1=1")

	if f.Title != "" {
		sb.WriteString(" AND t.title ILIKE " + arg(containsPattern(f.Title)))
	}
	if f.Department != "" {
		sb.WriteString(" AND UPPER(d.name) = UPPER(" + arg(f.Department) + ")")
	}
	if f.Institute != "" {
		sb.WriteString(" AND i.name LIKE " + arg(containsPattern(f.Institute)))
	}
	if f.Type != "" {
		sb.WriteString(" AND ty.name = " + arg(f.Type))
	}
	if f.TrialStage != "" {
		sb.WriteString(" AND UPPER(ts.name) = UPPER(" + arg(f.TrialStage) + ")")
	}
	if f.Scope != "" {
		sb.WriteString(" AND s.name = " + arg(f.Scope))
	}

	sb.WriteString(" ORDER BY t.updated_at ASC, t.id ASC")
	sb.WriteString(" LIMIT " + arg(f.Page.Limit) + " OFFSET " + arg(f.Page.Offset))

	records := []models.TaskRecord{}
	if err := r.db.SelectContext(ctx, &records, sb.String(), args...); err != nil {
		return nil, errors.Wrap(err, "search tasks")
	}
	return records, nil
}

func (r *TaskRepository) ListUpdatedWithin(ctx context.Context, window time.Duration, page models.Page) ([]models.TaskRecord, error) {
	records := []models.TaskRecord{}
	err := r.db.SelectContext(ctx, &records,
		selectTaskRecords+` WHERE t.updated_at BETWEEN CURRENT_TIMESTAMP - make_interval(secs => $1) AND CURRENT_TIMESTAMP
		ORDER BY t.id LIMIT $2 OFFSET $3`,
		window.Seconds(), page.Limit, page.Offset)
	if err != nil {
		return nil, errors.Wrap(err, "list recently updated tasks")
	}
	return records, nil
}

func (r *TaskRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM tasks"); err != nil {
		return 0, errors.Wrap(err, "count tasks")
	}
	return n, nil
}

// containsPattern turns s into a LIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
