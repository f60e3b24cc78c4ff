package generation

import (
	"fmt"
	"strings"

	"adept/internal/types"
)

const noContext = "(no additional context)"

// renderContext formats retrieved snippets for inclusion in a prompt.
func renderContext(docs []types.RetrievedDocument) string {
	if len(docs) == 0 {
		return noContext
	}
	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "--- Snippet %d (%s) ---\n%s", i+1, doc.Source(), strings.TrimSpace(doc.Text))
	}
	return sb.String()
}

func taskPrompt(objective, context string) string {
	return fmt.Sprintf(`Objective: %s

Context:
%s

Based on the objective and context, generate a list of tasks to complete the objective.
Return the tasks as a JSON array of objects with the following keys: title, description.`,
		strings.TrimSpace(objective), context)
}

func subtaskPrompt(parent ParentTask, objective, context string) string {
	return fmt.Sprintf(`Given the following main task: "%s - %s"
And the objective: "%s"

Context:
%s

Break down the objective into a list of smaller, actionable subtasks.
Return the subtasks as a JSON array of objects with the following keys: title, description.`,
		strings.TrimSpace(parent.Title), strings.TrimSpace(parent.Description), strings.TrimSpace(objective), context)
}
