// Package extract recovers task lists from free-form model replies.
//
// A reply is expected to carry a JSON array of {title, description} objects,
// either inside a ```json fence surrounded by prose or as the whole reply.
// Objects of the form {"tasks": [...]} are unwrapped and a lone object is
// treated as a one-element list. Nothing beyond that is repaired.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"adept/internal/logging"
	"adept/internal/types"
)

var (
	// jsonFencePattern matches a closed ```json block.
	jsonFencePattern = regexp.MustCompile("(?is)```json\\b[ \t]*\\r?\\n?(.*?)```")
	// openJSONFencePattern matches a ```json opener whose closing fence never came.
	openJSONFencePattern = regexp.MustCompile("(?is)```json\\b[ \t]*\\r?\\n?(.*)$")
	// fencePattern matches any triple-backtick block with an optional language tag.
	fencePattern = regexp.MustCompile("(?s)```([A-Za-z0-9_-]*)[ \t]*\\r?\\n?(.*?)```")
)

// Tasks extracts task records from a model reply.
func Tasks(reply string) ([]types.GeneratedTask, error) {
	payload, err := isolate(reply)
	if err != nil {
		logging.ExtractWarn("extraction failed: %v", err)
		return nil, err
	}

	items, err := decodeItems(payload)
	if err != nil {
		logging.ExtractWarn("extraction failed: %v", err)
		return nil, err
	}

	tasks := make([]types.GeneratedTask, 0, len(items))
	for i, item := range items {
		task, err := toTask(i, item)
		if err != nil {
			logging.ExtractWarn("extraction failed: %v", err)
			return nil, err
		}
		tasks = append(tasks, task)
	}

	logging.ExtractDebug("extracted %d tasks from %d-byte reply", len(tasks), len(reply))
	return tasks, nil
}

// Subtasks extracts subtask records from a model reply.
func Subtasks(reply string) ([]types.GeneratedSubtask, error) {
	tasks, err := Tasks(reply)
	if err != nil {
		return nil, err
	}
	return types.GeneratedSubtasksFrom(tasks), nil
}

// isolate returns the JSON text to parse: the body of the first json-tagged
// fence, the body of an untagged fence that holds JSON, or the whole reply
// when it is bare JSON. An unclosed json fence still counts as found so a
// truncated reply is reported as malformed.
func isolate(reply string) (string, error) {
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" {
		return "", noBlock("empty reply")
	}

	if m := jsonFencePattern.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	if m := openJSONFencePattern.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1]), nil
	}

	for _, m := range fencePattern.FindAllStringSubmatch(trimmed, -1) {
		body := strings.TrimSpace(m[2])
		if m[1] == "" && looksLikeJSON(body) {
			return body, nil
		}
	}

	if looksLikeJSON(trimmed) {
		return trimmed, nil
	}
	return "", noBlock("reply has no fenced json block and is not bare json")
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")
}

// decodeItems parses payload and normalizes it to a list.
func decodeItems(payload string) ([]interface{}, error) {
	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, malformed(err)
	}
	if err := ensureEOF(decoder); err != nil {
		return nil, malformed(err)
	}

	switch v := value.(type) {
	case []interface{}:
		return v, nil
	case map[string]interface{}:
		inner, ok := v["tasks"]
		if !ok {
			return []interface{}{v}, nil
		}
		list, ok := inner.([]interface{})
		if !ok {
			return nil, mismatch(`"tasks" must be an array, got %s`, kindOf(inner))
		}
		return list, nil
	default:
		return nil, mismatch("expected array or object, got %s", kindOf(value))
	}
}

func ensureEOF(decoder *json.Decoder) error {
	var extra interface{}
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after top-level value")
		}
		return err
	}
	return nil
}

func toTask(index int, item interface{}) (types.GeneratedTask, error) {
	obj, ok := item.(map[string]interface{})
	if !ok {
		return types.GeneratedTask{}, mismatch("item %d: expected object, got %s", index, kindOf(item))
	}

	title, ok := obj["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return types.GeneratedTask{}, mismatch("item %d: missing or empty title", index)
	}

	var description string
	switch d := obj["description"].(type) {
	case nil:
	case string:
		description = d
	default:
		return types.GeneratedTask{}, mismatch("item %d: description must be a string, got %s", index, kindOf(d))
	}

	return types.GeneratedTask{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
	}, nil
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
