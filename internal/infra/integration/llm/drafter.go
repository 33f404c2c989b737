// Package llm drafts donor outreach copy with Gemini.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/xavierca1/donor-crm/internal/usecase"
)

const DefaultModel = "gemini-2.0-flash"

const systemPrompt = `You write short, warm donor outreach emails for small nonprofits.
Write plain text only: no subject line, no markdown, no placeholders in brackets.
Keep it under 180 words and sign off with the organization name.`

// generator is the slice of the genai Models service the drafter uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Drafter struct {
	models generator
	model  string
}

func NewDrafter(ctx context.Context, apiKey, model string) (*Drafter, error) {
	if apiKey == "" {
		return nil, errors.New("llm: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}
	return newDrafter(client.Models, model), nil
}

func newDrafter(models generator, model string) *Drafter {
	if model == "" {
		model = DefaultModel
	}
	return &Drafter{models: models, model: model}
}

func (d *Drafter) DraftOutreach(ctx context.Context, req usecase.DraftRequest) (string, error) {
	temperature := float32(0.7)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   512,
	}
	contents := []*genai.Content{
		genai.NewContentFromText(buildPrompt(req), genai.RoleUser),
	}

	resp, err := d.models.GenerateContent(ctx, d.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("llm: generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("llm: empty draft")
	}
	return text, nil
}

func buildPrompt(req usecase.DraftRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Organization: %s\n", req.OrganizationName)
	fmt.Fprintf(&b, "Donor: %s\n", req.DonorName)
	fmt.Fprintf(&b, "Goal: %s\n", req.Action)
	if req.Subject != "" {
		fmt.Fprintf(&b, "Email subject: %s\n", req.Subject)
	}
	if req.GiftsCount == 0 {
		b.WriteString("Giving history: no gifts yet\n")
	} else {
		fmt.Fprintf(&b, "Giving history: %d gifts totaling %s", req.GiftsCount, formatCents(req.TotalGivenCents))
		if req.LastGiftDate != nil {
			fmt.Fprintf(&b, ", most recent on %s", req.LastGiftDate.Format("January 2, 2006"))
		}
		b.WriteString("\n")
	}
	b.WriteString("Write the email body.")
	return b.String()
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
