package generation

import (
	"context"
	"errors"
	"sync"

	"adept/internal/llm"
	"adept/internal/types"
)

type fakeBackend struct {
	mu          sync.Mutex
	prompts     []string
	groundings  []string
	TasksFunc   func(ctx context.Context, prompt string) ([]types.GeneratedTask, error)
	SummaryFunc func(ctx context.Context, snapshot types.ProjectSnapshot) (string, error)
	AnswerFunc  func(ctx context.Context, snapshot types.ProjectSnapshot, question string) (string, error)
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) record(prompt, grounding string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.groundings = append(f.groundings, grounding)
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeBackend) GenerateTasks(ctx context.Context, prompt string) ([]types.GeneratedTask, error) {
	f.record(prompt, "")
	if f.TasksFunc != nil {
		return f.TasksFunc(ctx, prompt)
	}
	return nil, nil
}

func (f *fakeBackend) Summarize(ctx context.Context, snapshot types.ProjectSnapshot, grounding string) (string, error) {
	f.record("", grounding)
	if f.SummaryFunc != nil {
		return f.SummaryFunc(ctx, snapshot)
	}
	return "summary", nil
}

func (f *fakeBackend) AnswerQuestion(ctx context.Context, snapshot types.ProjectSnapshot, question, grounding string) (string, error) {
	f.record(question, grounding)
	if f.AnswerFunc != nil {
		return f.AnswerFunc(ctx, snapshot, question)
	}
	return "answer", nil
}

type staticSource struct{ backend llm.Backend }

func (s staticSource) Backend(context.Context) llm.Backend { return s.backend }

type fakeRetriever struct {
	mu       sync.Mutex
	docs     []types.RetrievedDocument
	err      error
	queries  []string
	ingested []map[string]interface{}
}

func (f *fakeRetriever) Ingest(_ context.Context, text string, metadata map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	meta := map[string]interface{}{"text": text}
	for k, v := range metadata {
		meta[k] = v
	}
	f.ingested = append(f.ingested, meta)
	return nil
}

func (f *fakeRetriever) Query(_ context.Context, text string, _ int) ([]types.RetrievedDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, text)
	return f.docs, f.err
}

type fakeSink struct {
	tasks    []types.Task
	subtasks []types.Subtask
	err      error
	// onSave runs before every save.
	onSave func()
}

func (f *fakeSink) SaveTasks(ctx context.Context, tasks []types.Task) error {
	if f.onSave != nil {
		f.onSave()
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, tasks...)
	return nil
}

func (f *fakeSink) SaveSubtasks(ctx context.Context, subtasks []types.Subtask) error {
	if f.onSave != nil {
		f.onSave()
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	f.subtasks = append(f.subtasks, subtasks...)
	return nil
}

var errEmbedderDown = errors.New("embedder down")
