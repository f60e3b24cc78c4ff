// Package types holds the records shared by the generation core and its collaborators.
package types

import (
	"fmt"
	"time"
)

// Task and subtask status values.
const (
	StatusTodo = "todo"
	StatusDone = "done"
)

// GeneratedTask is one task recovered from a model reply, before persistence.
// Title is never empty; Description may be.
type GeneratedTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// GeneratedSubtask is a GeneratedTask scoped to a parent task.
type GeneratedSubtask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// GeneratedSubtasksFrom converts extractor output into subtask records.
func GeneratedSubtasksFrom(tasks []GeneratedTask) []GeneratedSubtask {
	out := make([]GeneratedSubtask, len(tasks))
	for i, t := range tasks {
		out[i] = GeneratedSubtask(t)
	}
	return out
}

// Task is a materialized task bound to a project.
type Task struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"project_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	AssignedUserID string     `json:"assigned_user_id,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Subtask is a materialized subtask bound to a parent task.
type Subtask struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Project is the owning entity of tasks.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProjectSnapshot is the structured project data handed to summarize and
// answer-question prompts.
type ProjectSnapshot struct {
	Project Project        `json:"project"`
	Tasks   []TaskSnapshot `json:"tasks"`
}

// TaskSnapshot is a task with its subtasks as seen in a snapshot.
type TaskSnapshot struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	AssignedTo  string            `json:"assigned_to,omitempty"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	Subtasks    []SubtaskSnapshot `json:"subtasks,omitempty"`
}

// SubtaskSnapshot is a subtask as seen in a snapshot.
type SubtaskSnapshot struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// RetrievedDocument is one ingested document returned by a similarity query.
type RetrievedDocument struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"`
	Score    float64                `json:"score"`
}

// Source returns a short label for the document, preferring metadata.
func (d RetrievedDocument) Source() string {
	for _, key := range []string{"source", "title", "kind"} {
		if v, ok := d.Metadata[key]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return d.ID
}
