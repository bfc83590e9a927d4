// Package sqlite provides a SQLite-backed plan store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/storage"
	"github.com/pablasso/smartplan/internal/storage/sqlite/migrations"
)

// Store persists plans in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite plan store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single writer keeps transactions from tripping over SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreatePlan inserts a plan, its tasks and their dependency edges in one
// transaction.
func (s *Store) CreatePlan(ctx context.Context, p *plan.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("plan id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create plan: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO plans (id, goal, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Goal, toMillis(p.CreatedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert plan: %w", err)
	}

	for _, t := range p.Tasks {
		var durValue sql.NullFloat64
		var durUnit sql.NullString
		if t.EstimatedDuration != nil {
			durValue = sql.NullFloat64{Float64: t.EstimatedDuration.Value, Valid: true}
			durUnit = sql.NullString{String: t.EstimatedDuration.Unit, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (
			   plan_id, id, name, description, priority,
			   estimated_days, duration_value, duration_unit, status
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, t.ID, t.Name, t.Description, string(t.Priority),
			t.EstimatedDays, durValue, durUnit, string(t.Status),
		); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
		for pos, dep := range t.Dependencies {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO task_dependencies (plan_id, task_id, position, depends_on) VALUES (?, ?, ?, ?)`,
				p.ID, t.ID, pos, dep,
			); err != nil {
				return fmt.Errorf("insert dependency %d -> %d: %w", t.ID, dep, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create plan: %w", err)
	}
	return nil
}

// ListPlans returns plan summaries oldest first.
func (s *Store) ListPlans(ctx context.Context) ([]plan.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT p.id, p.goal, p.created_at, COUNT(t.id)
		 FROM plans p
		 LEFT JOIN tasks t ON t.plan_id = p.id
		 GROUP BY p.id
		 ORDER BY p.created_at, p.id`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	summaries := []plan.Summary{}
	for rows.Next() {
		var sum plan.Summary
		var createdAt int64
		if err := rows.Scan(&sum.ID, &sum.Goal, &createdAt, &sum.TaskCount); err != nil {
			return nil, fmt.Errorf("scan plan summary: %w", err)
		}
		sum.CreatedAt = fromMillis(createdAt)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return summaries, nil
}

// GetPlan loads a plan with its tasks ordered by id.
func (s *Store) GetPlan(ctx context.Context, id string) (*plan.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := &plan.Plan{ID: id}
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT goal, created_at FROM plans WHERE id = ?`, id,
	).Scan(&p.Goal, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	p.CreatedAt = fromMillis(createdAt)

	tasks, err := s.loadTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Tasks = tasks
	return p, nil
}

func (s *Store) loadTasks(ctx context.Context, planID string) ([]plan.Task, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, description, priority, estimated_days, duration_value, duration_unit, status
		 FROM tasks WHERE plan_id = ? ORDER BY id`, planID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []plan.Task{}
	index := map[int]int{}
	for rows.Next() {
		var t plan.Task
		var priority, status string
		var durValue sql.NullFloat64
		var durUnit sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &priority, &t.EstimatedDays, &durValue, &durUnit, &status); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Priority = plan.Priority(priority)
		t.Status = plan.Status(status)
		if durValue.Valid && durUnit.Valid {
			t.EstimatedDuration = &plan.Duration{Value: durValue.Float64, Unit: durUnit.String}
		}
		t.Dependencies = []int{}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	rows.Close()

	depRows, err := s.sqlDB.QueryContext(ctx,
		`SELECT task_id, depends_on FROM task_dependencies
		 WHERE plan_id = ? ORDER BY task_id, position`, planID)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	defer depRows.Close()

	for depRows.Next() {
		var taskID, dep int
		if err := depRows.Scan(&taskID, &dep); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		if i, ok := index[taskID]; ok {
			tasks[i].Dependencies = append(tasks[i].Dependencies, dep)
		}
	}
	if err := depRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dependencies: %w", err)
	}
	return tasks, nil
}

// UpdateTaskStatus sets one task's status.
func (s *Store) UpdateTaskStatus(ctx context.Context, planID string, taskID int, status plan.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE tasks SET status = ? WHERE plan_id = ? AND id = ?`,
		string(status), planID, taskID,
	)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if n > 0 {
		return nil
	}
	return s.missing(ctx, planID)
}

// missing tells a missing plan apart from a missing task.
func (s *Store) missing(ctx context.Context, planID string) error {
	var found int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM plans WHERE id = ?`, planID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check plan: %w", err)
	}
	return storage.ErrTaskNotFound
}

// DeletePlan removes a plan with its tasks and dependency edges.
func (s *Store) DeletePlan(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete plan: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM task_dependencies WHERE plan_id = ?`, id); err != nil {
		return fmt.Errorf("delete dependencies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE plan_id = ?`, id); err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete plan: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
