package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratedSubtasksFrom(t *testing.T) {
	in := []GeneratedTask{{Title: "A", Description: "a"}, {Title: "B"}}
	out := GeneratedSubtasksFrom(in)

	require.Len(t, out, 2)
	assert.Equal(t, GeneratedSubtask{Title: "A", Description: "a"}, out[0])
	assert.Equal(t, "", out[1].Description)
	assert.Empty(t, GeneratedSubtasksFrom(nil))
}

func TestGeneratedTaskAlwaysSerializesDescription(t *testing.T) {
	data, err := json.Marshal(GeneratedTask{Title: "A"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"A","description":""}`, string(data))
}

func TestProjectSnapshotJSON(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	snap := ProjectSnapshot{
		Project: Project{ID: "p1", Name: "Apollo", Description: "Moon"},
		Tasks: []TaskSnapshot{{
			ID: "t1", Title: "Build", Status: StatusTodo, DueDate: &due,
			Subtasks: []SubtaskSnapshot{{ID: "s1", Title: "Rocket", Status: StatusDone}},
		}},
	}
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var back ProjectSnapshot
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "Apollo", back.Project.Name)
	assert.Equal(t, "Rocket", back.Tasks[0].Subtasks[0].Title)
	assert.True(t, due.Equal(*back.Tasks[0].DueDate))
}

func TestRetrievedDocumentSource(t *testing.T) {
	assert.Equal(t, "brief.md", RetrievedDocument{ID: "x", Metadata: map[string]interface{}{"source": "brief.md"}}.Source())
	assert.Equal(t, "task", RetrievedDocument{ID: "x", Metadata: map[string]interface{}{"kind": "task"}}.Source())
	assert.Equal(t, "x", RetrievedDocument{ID: "x"}.Source())
}
