// Package llm implements the external action proposer on top of the
// OpenAI Chat Completions API. The core never depends on how proposals
// are generated; this package is a replaceable black box behind
// domain.Proposer.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/domain"
)

const systemPrompt = `You are the operations copilot for a restaurant inventory system.
Given active risk alerts, historical usage context, and recent action history,
propose operational actions as a JSON array. Each element must have:
action_type (one of draft_po, create_task, adjust_par, update_delivery_eta,
transfer_stock, acknowledge_alert), payload (object with ingredient and
type-specific fields), owner_role (Purchasing, Kitchen, or VendorOps),
risk_level (low, medium, high), expected_impact, reason, and
source_alert_item. Respond with the JSON array only.`

// Proposer calls an OpenAI-compatible chat model to generate candidate
// actions.
type Proposer struct {
	client *openai.Client
	model  string
	log    *logrus.Logger
}

var _ domain.Proposer = (*Proposer)(nil)

// NewProposer creates a Proposer for the given API key and model.
func NewProposer(apiKey, model string, log *logrus.Logger) *Proposer {
	return &Proposer{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    log,
	}
}

// Propose implements domain.Proposer.
func (p *Proposer) Propose(ctx context.Context, req domain.PlanRequest) ([]domain.ActionProposal, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("building plan prompt: %w", err)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	proposals, err := ParseProposals(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"model":     resp.Model,
		"proposals": len(proposals),
	}).Debug("proposer round trip complete")

	return proposals, nil
}

// buildPrompt renders the operational picture as the user message.
func buildPrompt(req domain.PlanRequest) (string, error) {
	alerts, err := json.MarshalIndent(req.Alerts, "", "  ")
	if err != nil {
		return "", err
	}
	inventory, err := json.Marshal(req.Inventory)
	if err != nil {
		return "", err
	}
	history, err := json.Marshal(req.History)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if req.Command != "" {
		fmt.Fprintf(&b, "Operator command: %s\n\n", req.Command)
	}
	fmt.Fprintf(&b, "Restaurant: %s\nCurrent time: %s\nPlanning horizon: %d hours\n\n",
		req.RestaurantID, time.Now().UTC().Format(time.RFC3339), req.HorizonHours)
	fmt.Fprintf(&b, "Active alerts:\n%s\n\n", alerts)
	fmt.Fprintf(&b, "Inventory state:\n%s\n\n", inventory)
	fmt.Fprintf(&b, "Recent action history (avoid duplicates):\n%s\n", history)

	return b.String(), nil
}

// ParseProposals extracts a JSON array of proposals from model output,
// tolerating markdown fences and surrounding prose.
func ParseProposals(text string) ([]domain.ActionProposal, error) {
	text = stripFences(strings.TrimSpace(text))

	var proposals []domain.ActionProposal
	if err := json.Unmarshal([]byte(text), &proposals); err == nil {
		return proposals, nil
	}

	// A single object instead of an array.
	var one domain.ActionProposal
	if err := json.Unmarshal([]byte(text), &one); err == nil && one.ActionType != "" {
		return []domain.ActionProposal{one}, nil
	}

	// Mixed output: find the outermost array.
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start != -1 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &proposals); err == nil {
			return proposals, nil
		}
	}

	return nil, fmt.Errorf("no parseable action array in model output")
}

// stripFences removes markdown code fence lines.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
