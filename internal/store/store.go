// Package store persists projects, tasks and subtasks in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"adept/internal/logging"
	"adept/internal/types"
)

// ErrNotFound is returned when a project or task does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id               TEXT PRIMARY KEY,
	project_id       TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'todo',
	assigned_user_id TEXT,
	due_date         TEXT,
	created_at       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id, created_at);

CREATE TABLE IF NOT EXISTS subtasks (
	id          TEXT PRIMARY KEY,
	task_id     TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'todo',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_subtasks_task ON subtasks(task_id, created_at);
`

// Store is the SQLite-backed domain store. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("store: create data dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}

	logging.Store("opened database at %s", path)
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Projects ────────────────────────────────────────────────────────────────

// CreateProject stores a new project with a fresh id.
func (s *Store) CreateProject(ctx context.Context, name, description string) (types.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Project{}, errors.New("store: project name is required")
	}

	p := types.Project{ID: uuid.NewString(), Name: name, Description: strings.TrimSpace(description)}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, formatTime(s.now()),
	)
	if err != nil {
		return types.Project{}, fmt.Errorf("store: create project: %w", err)
	}

	logging.StoreDebug("created project %s (%s)", p.ID, p.Name)
	return p, nil
}

// GetProject returns the project with id.
func (s *Store) GetProject(ctx context.Context, id string) (types.Project, error) {
	var p types.Project
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Project{}, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Project{}, fmt.Errorf("store: get project: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects, oldest first.
func (s *Store) ListProjects(ctx context.Context) ([]types.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM projects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()

	var projects []types.Project
	for rows.Next() {
		var p types.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("store: scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ─── Tasks ───────────────────────────────────────────────────────────────────

// SaveTasks inserts tasks in one transaction: all of them or none.
func (s *Store) SaveTasks(ctx context.Context, tasks []types.Task) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO tasks (id, project_id, title, description, status, assigned_user_id, due_date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range tasks {
			if _, err := stmt.ExecContext(ctx,
				t.ID, t.ProjectID, t.Title, t.Description, statusOrTodo(t.Status),
				nullableString(t.AssignedUserID), nullableTime(t.DueDate), formatTime(t.CreatedAt),
			); err != nil {
				return fmt.Errorf("insert task %q: %w", t.Title, err)
			}
		}
		logging.StoreDebug("saved %d tasks", len(tasks))
		return nil
	})
}

// GetTask returns a task of the given project.
func (s *Store) GetTask(ctx context.Context, projectID, taskID string) (types.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND project_id = ?`, taskID, projectID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Task{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	if err != nil {
		return types.Task{}, fmt.Errorf("store: get task: %w", err)
	}
	return t, nil
}

// ListTasks returns the project's tasks, oldest first. A non-empty search
// keeps tasks whose title or description contains it, ignoring case.
func (s *Store) ListTasks(ctx context.Context, projectID, search string) ([]types.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ?`
	args := []any{projectID}
	if search = strings.TrimSpace(search); search != "" {
		query += ` AND (lower(title) LIKE ? ESCAPE '\' OR lower(description) LIKE ? ESCAPE '\')`
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// AssignTask sets the assignee of a task. An empty userID unassigns it.
func (s *Store) AssignTask(ctx context.Context, projectID, taskID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET assigned_user_id = ? WHERE id = ? AND project_id = ?`,
		nullableString(userID), taskID, projectID)
	if err != nil {
		return fmt.Errorf("store: assign task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	return nil
}

// ─── Subtasks ────────────────────────────────────────────────────────────────

// SaveSubtasks inserts subtasks in one transaction: all of them or none.
func (s *Store) SaveSubtasks(ctx context.Context, subtasks []types.Subtask) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO subtasks (id, task_id, title, description, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, st := range subtasks {
			if _, err := stmt.ExecContext(ctx,
				st.ID, st.TaskID, st.Title, st.Description, statusOrTodo(st.Status), formatTime(st.CreatedAt),
			); err != nil {
				return fmt.Errorf("insert subtask %q: %w", st.Title, err)
			}
		}
		logging.StoreDebug("saved %d subtasks", len(subtasks))
		return nil
	})
}

// ListSubtasks returns the subtasks of a task, oldest first.
func (s *Store) ListSubtasks(ctx context.Context, taskID string) ([]types.Subtask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, title, description, status, created_at FROM subtasks WHERE task_id = ? ORDER BY created_at, rowid`, taskID)
	if err != nil {
		return nil, fmt.Errorf("store: list subtasks: %w", err)
	}
	defer rows.Close()

	var subtasks []types.Subtask
	for rows.Next() {
		var st types.Subtask
		var created string
		if err := rows.Scan(&st.ID, &st.TaskID, &st.Title, &st.Description, &st.Status, &created); err != nil {
			return nil, fmt.Errorf("store: scan subtask: %w", err)
		}
		st.CreatedAt = parseTime(created)
		subtasks = append(subtasks, st)
	}
	return subtasks, rows.Err()
}

// ─── Snapshot ────────────────────────────────────────────────────────────────

// Snapshot collects the project with all its tasks and subtasks.
func (s *Store) Snapshot(ctx context.Context, projectID string) (types.ProjectSnapshot, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return types.ProjectSnapshot{}, err
	}

	tasks, err := s.ListTasks(ctx, projectID, "")
	if err != nil {
		return types.ProjectSnapshot{}, err
	}

	snapshot := types.ProjectSnapshot{Project: project, Tasks: make([]types.TaskSnapshot, 0, len(tasks))}
	for _, t := range tasks {
		subtasks, err := s.ListSubtasks(ctx, t.ID)
		if err != nil {
			return types.ProjectSnapshot{}, err
		}
		ts := types.TaskSnapshot{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			AssignedTo:  t.AssignedUserID,
			DueDate:     t.DueDate,
		}
		for _, st := range subtasks {
			ts.Subtasks = append(ts.Subtasks, types.SubtaskSnapshot{
				ID:          st.ID,
				Title:       st.Title,
				Description: st.Description,
				Status:      st.Status,
			})
		}
		snapshot.Tasks = append(snapshot.Tasks, ts)
	}
	return snapshot, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

const taskColumns = `id, project_id, title, description, status, assigned_user_id, due_date, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (types.Task, error) {
	var t types.Task
	var assignee, due sql.NullString
	var created string
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &assignee, &due, &created); err != nil {
		return types.Task{}, err
	}
	t.AssignedUserID = assignee.String
	if due.Valid && due.String != "" {
		d := parseTime(due.String)
		t.DueDate = &d
	}
	t.CreatedAt = parseTime(created)
	return t, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func statusOrTodo(status string) string {
	if status == "" {
		return types.StatusTodo
	}
	return status
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
