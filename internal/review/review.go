// Package review sends fallback-classified records to Claude for a second
// opinion. Suggestions are advisory only and land in the review_suggestions
// table; the rule engine's output is never changed automatically.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"lcmapper/internal/domain"
)

const systemPrompt = `You review department classifications for offshore logistics records.
Each record carries a location and free-text event fields. The valid departments are
Drilling, Production, Logistics and Operations. For every record, suggest the most
plausible department with a confidence between 0 and 1 and a one-sentence rationale.
Respond with a JSON array: [{"id": <record id>, "department": "...", "confidence": 0.0, "rationale": "..."}].
Respond with JSON only, no prose.`

// Suggestion is one advisory result parsed from the model response.
type Suggestion struct {
	ID         int64   `json:"id"`
	Department string  `json:"department"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// Reviewer batches records into prompts against one model.
type Reviewer struct {
	client anthropic.Client
	model  string
}

func NewReviewer(apiKey, model string) *Reviewer {
	return &Reviewer{client: anthropic.NewClient(option.WithAPIKey(apiKey)), model: model}
}

// Model returns the model name suggestions are attributed to.
func (r *Reviewer) Model() string { return r.model }

// Review asks the model for department suggestions for one batch of records.
func (r *Reviewer) Review(ctx context.Context, records []domain.OperationalRecord) ([]Suggestion, error) {
	if len(records) == 0 {
		return nil, nil
	}

	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "id=%d location=%q parent_event=%q event=%q remarks=%q port_type=%q current_department=%q\n",
			rec.ID, rec.EffectiveLocation(), rec.ParentEvent, rec.Event, rec.Remarks, rec.PortType, rec.Department)
	}

	message, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(b.String())),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("review response size=%d tokens_in=%d tokens_out=%d",
				len(block.Text), message.Usage.InputTokens, message.Usage.OutputTokens)
			return parseSuggestions(block.Text)
		}
	}
	return nil, fmt.Errorf("no text content in model response")
}

// parseSuggestions tolerates markdown fences around the JSON array.
func parseSuggestions(text string) ([]Suggestion, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(text), &suggestions); err != nil {
		return nil, fmt.Errorf("parsing review response: %w", err)
	}
	return suggestions, nil
}
