package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/xavierca1/donor-crm/internal/usecase"
)

type fakeGenerator struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	return f.resp, f.err
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(s, genai.RoleModel)}},
	}
}

func TestBuildPrompt(t *testing.T) {
	last := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	p := buildPrompt(usecase.DraftRequest{
		OrganizationName: "Hope Fund",
		DonorName:        "Ada Lovelace",
		Action:           "Send thank you note",
		TotalGivenCents:  125050,
		GiftsCount:       3,
		LastGiftDate:     &last,
		Subject:          "Thank you",
	})

	assert.Contains(t, p, "Organization: Hope Fund")
	assert.Contains(t, p, "Donor: Ada Lovelace")
	assert.Contains(t, p, "Goal: Send thank you note")
	assert.Contains(t, p, "3 gifts totaling $1250.50, most recent on March 9, 2024")
	assert.Contains(t, p, "Email subject: Thank you")
}

func TestBuildPrompt_NoGifts(t *testing.T) {
	p := buildPrompt(usecase.DraftRequest{OrganizationName: "Hope Fund", DonorName: "Ada"})
	assert.Contains(t, p, "no gifts yet")
	assert.NotContains(t, p, "Email subject")
}

func TestDrafter_DraftOutreach(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("  Dear Ada,\nThank you.  ")}
	d := newDrafter(gen, "")

	text, err := d.DraftOutreach(context.Background(), usecase.DraftRequest{DonorName: "Ada"})

	require.NoError(t, err)
	assert.Equal(t, "Dear Ada,\nThank you.", text)
	assert.Equal(t, DefaultModel, gen.model)
	require.Len(t, gen.contents, 1)
	require.NotNil(t, gen.config.SystemInstruction)
}

func TestDrafter_DraftOutreach_Errors(t *testing.T) {
	_, err := newDrafter(&fakeGenerator{err: errors.New("quota")}, "m").DraftOutreach(context.Background(), usecase.DraftRequest{})
	assert.ErrorContains(t, err, "quota")

	_, err = newDrafter(&fakeGenerator{resp: textResponse("   ")}, "m").DraftOutreach(context.Background(), usecase.DraftRequest{})
	assert.ErrorContains(t, err, "empty draft")
}

func TestNewDrafter_RequiresKey(t *testing.T) {
	_, err := NewDrafter(context.Background(), "", "")
	assert.Error(t, err)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$0.05", formatCents(5))
	assert.Equal(t, "-$12.30", formatCents(-1230))
}
