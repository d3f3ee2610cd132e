// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"text/template"
	"unicode/utf8"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// maxDescriptionChars bounds the description text embedded in a prompt.
// Truncation is silent and lossy: it caps request cost only and never
// affects the cache key. Per prd003-enrichment R1.4.
const maxDescriptionChars = 500

// singlePromptTmpl asks the model to annotate one topic. The model must
// answer with a bare JSON object so the response can be parsed directly.
var singlePromptTmpl = template.Must(template.New("single").Parse(`You are an expert educator evaluating technical learning topics.

Topic to evaluate:
{{.Topic}}

Task:
1. "summary": a crisp summary of the topic, at most 12 words, no ending punctuation
2. "classification": exactly one of
   - "practice": fundamental skills, shallow breadth, few prerequisites
   - "expert": advanced/architecture/production, heavy prerequisites, deep trade-offs
3. "guide": a numbered multi-step learning guide (3-5 steps, one line each)

Respond with a single JSON object containing the "summary", "classification",
and "guide" fields. Do not include any text outside the JSON object.
`))

// batchPromptTmpl asks the model to annotate several topics at once. Each
// topic carries a synthetic id so responses are correlated positionally,
// not by content. Per prd003-enrichment R1.2.
var batchPromptTmpl = template.Must(template.New("batch").Parse(`You are an expert educator evaluating technical learning topics.

Topics to evaluate ({{.Count}} total):
{{.Topics}}

Task, for every topic:
1. "id": copy the topic's id unchanged
2. "summary": a crisp summary of the topic, at most 12 words, no ending punctuation
3. "classification": exactly one of
   - "practice": fundamental skills, shallow breadth, few prerequisites
   - "expert": advanced/architecture/production, heavy prerequisites, deep trade-offs
4. "guide": a numbered multi-step learning guide (3-5 steps, one line each)

Respond with a single JSON array of exactly {{.Count}} objects, one per topic,
each containing the "id", "summary", "classification", and "guide" fields.
Do not include any text outside the JSON array.
`))

// promptTopic is one topic as embedded in a prompt. ID is present only in
// batch mode and is valid for the duration of one model call.
type promptTopic struct {
	ID          string `json:"id,omitempty"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

// buildSinglePrompt renders the enrichment prompt for one row. Pure and
// deterministic: no network or state access.
func buildSinglePrompt(row types.Row) (string, error) {
	topic, err := marshalTopic(promptTopic{
		Category:    row.Category,
		Subcategory: row.Subcategory,
		Topic:       row.Topic,
		Description: truncate(row.Description, maxDescriptionChars),
	})
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := singlePromptTmpl.Execute(&buf, struct{ Topic string }{Topic: topic}); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// buildBatchPrompt renders the enrichment prompt for a bounded list of rows.
// Synthetic ids are the decimal positions "0".."n-1" within this batch.
func buildBatchPrompt(rows []types.Row) (string, error) {
	topics := make([]promptTopic, len(rows))
	for i, row := range rows {
		topics[i] = promptTopic{
			ID:          strconv.Itoa(i),
			Category:    row.Category,
			Subcategory: row.Subcategory,
			Topic:       row.Topic,
			Description: truncate(row.Description, maxDescriptionChars),
		}
	}

	data, err := json.MarshalIndent(topics, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling topics: %w", err)
	}

	var buf bytes.Buffer
	err = batchPromptTmpl.Execute(&buf, struct {
		Count  int
		Topics string
	}{Count: len(rows), Topics: string(data)})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

func marshalTopic(t promptTopic) (string, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling topic: %w", err)
	}
	return string(data), nil
}

// truncate bounds s to at most n bytes without splitting a multi-byte rune:
// the cut backs up to the nearest rune boundary so the prompt never embeds a
// mangled sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
