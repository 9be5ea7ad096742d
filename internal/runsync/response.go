package runsync

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const responseSchemaJSON = `{
  "type": "object",
  "properties": {
    "id":            {"type": "string"},
    "status":        {"type": "string"},
    "output":        {"type": ["object", "null"]},
    "error":         {"type": ["string", "object", "null"]},
    "delayTime":     {"type": "number"},
    "executionTime": {"type": "number"}
  }
}`

var responseSchema = mustSchema(responseSchemaJSON)

func mustSchema(def string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(def))
	if err != nil {
		panic(fmt.Sprintf("runsync: invalid response schema: %v", err))
	}
	return schema
}

type envelope struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	Output        json.RawMessage `json:"output"`
	Error         json.RawMessage `json:"error"`
	DelayTime     *float64        `json:"delayTime"`
	ExecutionTime *float64        `json:"executionTime"`
}

// result is the validated success branch of a runsync response.
type result struct {
	jobID       string
	artifactURL string
	cost        *float64
	delayMs     *float64
	executionMs *float64
}

// decodeResponse turns a status code and body into a result or a descriptive error.
func decodeResponse(status int, body []byte, artifactField string) (result, error) {
	if status < 200 || status > 299 {
		return result{}, fmt.Errorf("runsync failed (%d): %s", status, failureDetail(body))
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return result{}, errors.New("malformed runsync response: empty body")
	}
	if err := validate(trimmed); err != nil {
		return result{}, err
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return result{}, fmt.Errorf("malformed runsync response: %w", err)
	}
	if msg := errorText(env.Error); msg != "" {
		return result{}, fmt.Errorf("runsync error: %s", msg)
	}
	if env.Status != "" && !strings.EqualFold(env.Status, statusCompleted) {
		return result{}, fmt.Errorf("runsync job %s not completed (status %s)", env.ID, env.Status)
	}

	outputJSON := []byte(env.Output)
	if !present(env.Output) {
		outputJSON = trimmed
	}
	var output map[string]any
	if err := json.Unmarshal(outputJSON, &output); err != nil {
		return result{}, fmt.Errorf("malformed runsync output: %w", err)
	}

	res := result{
		jobID:       env.ID,
		delayMs:     env.DelayTime,
		executionMs: env.ExecutionTime,
	}
	if u, ok := output[artifactField].(string); ok {
		res.artifactURL = u
	}
	if cost, ok := output["cost"].(float64); ok {
		res.cost = &cost
	}
	return res, nil
}

func validate(body []byte) error {
	res, err := responseSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("malformed runsync response: %w", err)
	}
	if res.Valid() {
		return nil
	}
	var errs []string
	for _, desc := range res.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("malformed runsync response: %s", strings.Join(errs, ", "))
}

// failureDetail prefers the body's error field, then the raw body.
func failureDetail(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if msg := errorText(env.Error); msg != "" {
			return msg
		}
	}
	if raw := strings.TrimSpace(string(body)); raw != "" {
		return raw
	}
	return "unknown error"
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// errorText is the error field as text; null and blank strings read as no error.
func errorText(raw json.RawMessage) string {
	if !present(raw) {
		return ""
	}
	return strings.TrimSpace(rawText(raw))
}

func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err == nil {
		return buf.String()
	}
	return string(raw)
}
