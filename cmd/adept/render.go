package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"adept/internal/types"
)

// renderMarkdown renders a model reply for the terminal. Rendering problems
// fall back to the plain text.
func renderMarkdown(md string, raw bool) string {
	if raw {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func printTasks(w io.Writer, tasks []types.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	for _, t := range tasks {
		line := fmt.Sprintf("%s  [%s] %s", t.ID, t.Status, t.Title)
		if t.AssignedUserID != "" {
			line += "  @" + t.AssignedUserID
		}
		if t.DueDate != nil {
			line += "  due " + t.DueDate.Format("2006-01-02")
		}
		fmt.Fprintln(w, line)
		if d := strings.TrimSpace(t.Description); d != "" {
			fmt.Fprintf(w, "    %s\n", d)
		}
	}
}

func printSubtasks(w io.Writer, subtasks []types.Subtask) {
	if len(subtasks) == 0 {
		fmt.Fprintln(w, "No subtasks.")
		return
	}
	for _, s := range subtasks {
		fmt.Fprintf(w, "%s  [%s] %s\n", s.ID, s.Status, s.Title)
		if d := strings.TrimSpace(s.Description); d != "" {
			fmt.Fprintf(w, "    %s\n", d)
		}
	}
}
