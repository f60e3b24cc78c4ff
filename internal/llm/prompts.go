package llm

import (
	"encoding/json"
	"strings"

	"adept/internal/types"
)

const (
	// localTaskSystemPrompt relies on the server's JSON mode.
	localTaskSystemPrompt = "You are a project manager. Your task is to break down an objective into a list of tasks. " +
		"Return the tasks as a JSON object with a \"tasks\" key holding an array of objects with the following keys: title, description."

	// fencedTaskSystemPrompt is used by backends without a JSON mode.
	fencedTaskSystemPrompt = "You are a project manager. Break down the objective into a list of tasks. " +
		"Return ONLY a **valid JSON array** of objects with title, description. " +
		"Ensure it is valid JSON, with commas between objects (except the last one). " +
		"Wrap the output in triple backticks and json (```json ... ```)."

	summarySystemPrompt = "You are a project manager. Your task is to provide a summary of the project status. " +
		"Return the summary as a single string in Markdown format."

	questionSystemPrompt = "You are a project manager. Your task is to answer questions about the project based on the provided data. " +
		"Answer in Markdown format."
)

// summaryPrompt renders the user message for a status summary.
func summaryPrompt(snapshot types.ProjectSnapshot, grounding string) string {
	var sb strings.Builder
	sb.WriteString(renderSnapshot(snapshot))
	if g := strings.TrimSpace(grounding); g != "" {
		sb.WriteString("\n\nRelated documents:\n")
		sb.WriteString(g)
	}
	return sb.String()
}

// questionPrompt renders the user message for a project question.
func questionPrompt(snapshot types.ProjectSnapshot, question, grounding string) string {
	var sb strings.Builder
	sb.WriteString("Context:\n")
	sb.WriteString(renderSnapshot(snapshot))
	if g := strings.TrimSpace(grounding); g != "" {
		sb.WriteString("\n\nRelated documents:\n")
		sb.WriteString(g)
	}
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(strings.TrimSpace(question))
	return sb.String()
}

// renderSnapshot serializes the snapshot as the JSON handed to the model.
func renderSnapshot(snapshot types.ProjectSnapshot) string {
	data, err := json.Marshal(snapshot)
	if err != nil {
		// ProjectSnapshot holds only marshalable fields.
		return "{}"
	}
	return string(data)
}

// singlePrompt joins system and user text for backends without message roles.
func singlePrompt(system, user string) string {
	return system + "\n\n" + user
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// bodySnippet trims an error body for inclusion in messages.
func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 512 {
		s = s[:512] + "..."
	}
	return s
}
