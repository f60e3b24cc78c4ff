// Package generation runs task generation, summaries and questions against
// the active model backend, grounding each prompt with retrieved context.
//
// Every request is single-shot: one retrieval, one backend call, no retries.
// Failures are reported as *Error with one of the Kind values.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"adept/internal/llm"
	"adept/internal/logging"
	"adept/internal/types"
)

// BackendSource hands out the active backend. *llm.Selector implements it.
type BackendSource interface {
	Backend(ctx context.Context) llm.Backend
}

// Retriever is the retrieval context provider. *retrieval.Provider implements it.
type Retriever interface {
	Ingest(ctx context.Context, text string, metadata map[string]interface{}) error
	Query(ctx context.Context, text string, topK int) ([]types.RetrievedDocument, error)
}

// Sink persists materialized records. Each call receives one whole batch and
// must store all of it or nothing.
type Sink interface {
	SaveTasks(ctx context.Context, tasks []types.Task) error
	SaveSubtasks(ctx context.Context, subtasks []types.Subtask) error
}

// TaskRequest asks for tasks that accomplish Objective within a project.
type TaskRequest struct {
	ProjectID  string
	Objective  string
	AssigneeID string
	DueDate    *time.Time
}

// ParentTask identifies the task subtasks are generated for.
type ParentTask struct {
	ID          string
	Title       string
	Description string
}

// SubtaskRequest asks for subtasks of Parent.
type SubtaskRequest struct {
	ProjectID string
	Parent    ParentTask
	Objective string
}

// Orchestrator composes retrieval, prompting, extraction and materialization.
// It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	backends  BackendSource
	retriever Retriever
	sink      Sink
	topK      int
	now       func() time.Time
	newID     func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRetriever enables context retrieval.
func WithRetriever(r Retriever) Option {
	return func(o *Orchestrator) { o.retriever = r }
}

// WithSink persists materialized records before they are returned.
func WithSink(s Sink) Option {
	return func(o *Orchestrator) { o.sink = s }
}

// WithTopK sets how many snippets ground each prompt.
func WithTopK(k int) Option {
	return func(o *Orchestrator) { o.topK = k }
}

// WithClock overrides the CreatedAt source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// New creates an orchestrator over the given backend source.
func New(backends BackendSource, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backends: backends,
		topK:     5,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GenerateTasks breaks an objective into tasks bound to the project.
func (o *Orchestrator) GenerateTasks(ctx context.Context, req TaskRequest) ([]types.Task, error) {
	const op = "generate_tasks"
	if strings.TrimSpace(req.Objective) == "" {
		return nil, fmt.Errorf("%w: objective is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, fmt.Errorf("%w: project id is required", ErrInvalidRequest)
	}
	if ctx.Err() != nil {
		return nil, cancelled(ctx, op)
	}

	timer := logging.StartTimer(logging.CategoryGeneration, op)
	defer timer.Stop()

	grounding := o.buildContext(ctx, req.Objective)
	prompt := taskPrompt(req.Objective, grounding)

	backend := o.backends.Backend(ctx)
	generated, err := backend.GenerateTasks(ctx, prompt)
	if err != nil {
		gerr := classify(ctx, op, err)
		logging.GenerationError("%s via %s failed (%s): %v", op, backend.Name(), gerr.Kind, err)
		return nil, gerr
	}
	if ctx.Err() != nil {
		logging.GenerationWarn("%s: request cancelled after backend reply; discarding %d tasks", op, len(generated))
		return nil, cancelled(ctx, op)
	}

	created := o.now().UTC()
	tasks := make([]types.Task, len(generated))
	for i, g := range generated {
		tasks[i] = types.Task{
			ID:             o.newID(),
			ProjectID:      req.ProjectID,
			Title:          g.Title,
			Description:    g.Description,
			Status:         types.StatusTodo,
			AssignedUserID: req.AssigneeID,
			DueDate:        req.DueDate,
			CreatedAt:      created,
		}
	}

	if o.sink != nil && len(tasks) > 0 {
		if err := o.sink.SaveTasks(ctx, tasks); err != nil {
			if ctx.Err() != nil {
				return nil, cancelled(ctx, op)
			}
			logging.GenerationError("%s: persisting %d tasks failed: %v", op, len(tasks), err)
			return nil, &Error{Kind: KindPersistence, Op: op, Err: err}
		}
	}

	logging.Generation("%s: materialized %d tasks for project %s via %s", op, len(tasks), req.ProjectID, backend.Name())
	return tasks, nil
}

// GenerateSubtasks breaks an objective into subtasks of req.Parent.
func (o *Orchestrator) GenerateSubtasks(ctx context.Context, req SubtaskRequest) ([]types.Subtask, error) {
	const op = "generate_subtasks"
	if strings.TrimSpace(req.Objective) == "" {
		return nil, fmt.Errorf("%w: objective is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Parent.ID) == "" {
		return nil, fmt.Errorf("%w: parent task id is required", ErrInvalidRequest)
	}
	if ctx.Err() != nil {
		return nil, cancelled(ctx, op)
	}

	timer := logging.StartTimer(logging.CategoryGeneration, op)
	defer timer.Stop()

	grounding := o.buildContext(ctx, req.Parent.Title+"\n"+req.Objective)
	prompt := subtaskPrompt(req.Parent, req.Objective, grounding)

	backend := o.backends.Backend(ctx)
	generated, err := backend.GenerateTasks(ctx, prompt)
	if err != nil {
		gerr := classify(ctx, op, err)
		logging.GenerationError("%s via %s failed (%s): %v", op, backend.Name(), gerr.Kind, err)
		return nil, gerr
	}
	if ctx.Err() != nil {
		logging.GenerationWarn("%s: request cancelled after backend reply; discarding %d subtasks", op, len(generated))
		return nil, cancelled(ctx, op)
	}

	created := o.now().UTC()
	subtasks := make([]types.Subtask, len(generated))
	for i, g := range types.GeneratedSubtasksFrom(generated) {
		subtasks[i] = types.Subtask{
			ID:          o.newID(),
			TaskID:      req.Parent.ID,
			Title:       g.Title,
			Description: g.Description,
			Status:      types.StatusTodo,
			CreatedAt:   created,
		}
	}

	if o.sink != nil && len(subtasks) > 0 {
		if err := o.sink.SaveSubtasks(ctx, subtasks); err != nil {
			if ctx.Err() != nil {
				return nil, cancelled(ctx, op)
			}
			logging.GenerationError("%s: persisting %d subtasks failed: %v", op, len(subtasks), err)
			return nil, &Error{Kind: KindPersistence, Op: op, Err: err}
		}
	}

	logging.Generation("%s: materialized %d subtasks for task %s via %s", op, len(subtasks), req.Parent.ID, backend.Name())
	return subtasks, nil
}

// SummarizeProject returns a Markdown status summary.
func (o *Orchestrator) SummarizeProject(ctx context.Context, snapshot types.ProjectSnapshot) (string, error) {
	const op = "summarize_project"
	if ctx.Err() != nil {
		return "", cancelled(ctx, op)
	}

	var grounding string
	if query := strings.TrimSpace(snapshot.Project.Name + "\n" + snapshot.Project.Description); query != "" {
		if docs := o.retrieve(ctx, query); len(docs) > 0 {
			grounding = renderContext(docs)
		}
	}

	backend := o.backends.Backend(ctx)
	summary, err := backend.Summarize(ctx, snapshot, grounding)
	if err != nil {
		gerr := classify(ctx, op, err)
		logging.GenerationError("%s via %s failed (%s): %v", op, backend.Name(), gerr.Kind, err)
		return "", gerr
	}
	if ctx.Err() != nil {
		return "", cancelled(ctx, op)
	}
	return summary, nil
}

// AnswerQuestion answers a question about the project in Markdown.
func (o *Orchestrator) AnswerQuestion(ctx context.Context, snapshot types.ProjectSnapshot, question string) (string, error) {
	const op = "answer_question"
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is required", ErrInvalidRequest)
	}
	if ctx.Err() != nil {
		return "", cancelled(ctx, op)
	}

	var grounding string
	if docs := o.retrieve(ctx, question); len(docs) > 0 {
		grounding = renderContext(docs)
	}

	backend := o.backends.Backend(ctx)
	answer, err := backend.AnswerQuestion(ctx, snapshot, question, grounding)
	if err != nil {
		gerr := classify(ctx, op, err)
		logging.GenerationError("%s via %s failed (%s): %v", op, backend.Name(), gerr.Kind, err)
		return "", gerr
	}
	if ctx.Err() != nil {
		return "", cancelled(ctx, op)
	}
	return answer, nil
}

// IngestDocument adds a document to the retrieval index.
func (o *Orchestrator) IngestDocument(ctx context.Context, text string, metadata map[string]interface{}) error {
	const op = "ingest_document"
	if o.retriever == nil {
		return &Error{Kind: KindRetrieval, Op: op, Err: errors.New("retrieval is not configured")}
	}
	if err := o.retriever.Ingest(ctx, text, metadata); err != nil {
		return &Error{Kind: KindRetrieval, Op: op, Err: err}
	}
	return nil
}

// QueryContext returns the documents most relevant to text.
func (o *Orchestrator) QueryContext(ctx context.Context, text string, topK int) ([]types.RetrievedDocument, error) {
	const op = "query_context"
	if o.retriever == nil {
		return nil, &Error{Kind: KindRetrieval, Op: op, Err: errors.New("retrieval is not configured")}
	}
	docs, err := o.retriever.Query(ctx, text, topK)
	if err != nil {
		return nil, &Error{Kind: KindRetrieval, Op: op, Err: err}
	}
	return docs, nil
}

// IngestTasks indexes generated tasks so later prompts can see them.
// Failures are logged and otherwise ignored.
func (o *Orchestrator) IngestTasks(ctx context.Context, tasks []types.Task) {
	for _, t := range tasks {
		o.ingestRecord(ctx, t.ID, t.ProjectID, "task", t.Title, t.Description)
	}
}

// IngestSubtasks indexes generated subtasks. Failures are logged only.
func (o *Orchestrator) IngestSubtasks(ctx context.Context, projectID string, subtasks []types.Subtask) {
	for _, s := range subtasks {
		o.ingestRecord(ctx, s.ID, projectID, "subtask", s.Title, s.Description)
	}
}

func (o *Orchestrator) ingestRecord(ctx context.Context, id, projectID, kind, title, description string) {
	if o.retriever == nil {
		return
	}
	text := strings.TrimSpace(title + "\n" + description)
	meta := map[string]interface{}{"id": id, "project_id": projectID, "kind": kind, "title": title}
	if err := o.retriever.Ingest(ctx, text, meta); err != nil {
		logging.GenerationWarn("indexing %s %s failed: %v", kind, id, err)
	}
}

// buildContext renders the context block for a generation prompt.
func (o *Orchestrator) buildContext(ctx context.Context, query string) string {
	return renderContext(o.retrieve(ctx, query))
}

// retrieve returns snippets for query. Retrieval problems never fail the
// request; they yield no snippets.
func (o *Orchestrator) retrieve(ctx context.Context, query string) []types.RetrievedDocument {
	if o.retriever == nil {
		return nil
	}
	docs, err := o.retriever.Query(ctx, query, o.topK)
	if err != nil {
		logging.GenerationWarn("retrieval failed, continuing without context: %v", err)
		return nil
	}
	logging.GenerationDebug("retrieved %d snippets", len(docs))
	return docs
}
