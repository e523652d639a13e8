package reason

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// LLMReasoner satisfies Reasoner via the Anthropic Messages API. Each call is
// a single-shot request; no conversation state is kept between calls.
type LLMReasoner struct {
	client *Client
}

// Compile-time verification that LLMReasoner implements Reasoner.
var _ Reasoner = (*LLMReasoner)(nil)

// NewLLMReasoner creates a reasoner backed by the given client.
func NewLLMReasoner(client *Client) *LLMReasoner {
	return &LLMReasoner{client: client}
}

// Reason performs one reasoning call and extracts the structured result.
func (r *LLMReasoner) Reason(ctx context.Context, req Request) (Result, error) {
	system, prompt, wantsJSON := buildPrompt(req)

	resp, err := r.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
		Model:     r.client.Model(),
		MaxTokens: 2048,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("reasoning call for %s/%s: %w", req.Task, req.PatientID, err)
	}

	r.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}

	result := Result{Text: strings.TrimSpace(text.String())}
	if wantsJSON {
		raw := extractJSON(result.Text)
		if !json.Valid(raw) {
			return Result{}, fmt.Errorf("reasoning call for %s/%s: response is not valid JSON", req.Task, req.PatientID)
		}
		result.JSON = raw
	}

	return result, nil
}

// buildPrompt renders the system and user prompts for a task. The bool result
// reports whether the task's contract is a JSON document.
func buildPrompt(req Request) (system, prompt string, wantsJSON bool) {
	switch req.Task {
	case TaskInterpretMutation:
		system = "You are a clinical genomics expert. Respond with a single JSON object and nothing else. " +
			`Schema: {"gene","variant","significance","mechanism","tier","approved_therapy","prevalence"}. ` +
			`Tier is one of "Tier 1".."Tier 4". approved_therapy is "" when no FDA-approved match exists.`
		prompt = fmt.Sprintf("Interpret mutation %v %v in the context of %v for patient %s.",
			req.Context["gene"], req.Context["variant"], req.Context["cancer_type"], req.PatientID)
		return system, prompt, true

	case TaskCaseSummary:
		system = "You are preparing an MDT case summary. Respond with one plain sentence, no preamble."
		prompt = fmt.Sprintf("Summarize case readiness for patient %s given: %s", req.PatientID, renderContext(req.Context))
		return system, prompt, false

	case TaskReportSummary:
		system = "You are writing the executive summary of a genomics intelligence report. Respond with 2-3 plain sentences."
		prompt = fmt.Sprintf("Summarize the genomic findings for patient %s given: %s", req.PatientID, renderContext(req.Context))
		return system, prompt, false

	default:
		system = "Respond concisely."
		prompt = renderContext(req.Context)
		return system, prompt, false
	}
}

// renderContext flattens the structured context deterministically.
func renderContext(ctx map[string]any) string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, ctx[k]))
	}
	return strings.Join(parts, "; ")
}

// extractJSON strips markdown fences the model may wrap around a JSON body.
func extractJSON(text string) json.RawMessage {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	// Fall back to the outermost braces when prose surrounds the document.
	if !strings.HasPrefix(clean, "{") {
		start := strings.Index(clean, "{")
		end := strings.LastIndex(clean, "}")
		if start >= 0 && end > start {
			clean = clean[start : end+1]
		}
	}

	return json.RawMessage(clean)
}
