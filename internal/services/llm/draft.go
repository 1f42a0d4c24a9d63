package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ContentDraft carries the generated publishing copy for one video.
type ContentDraft struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Uncertain   bool    `json:"-"`
}

// Drafts below this confidence are flagged uncertain but still published.
const uncertainConfidenceThreshold = 0.7

// Soft guidance from the publishing surface; violations are reported, not enforced.
const (
	titleRuneGuideline   = 20
	descriptionRuneMin   = 100
	descriptionRuneMax   = 800
	maxTranscriptContext = 6000
)

const draftSystemPrompt = `You write short-form social video posts in Chinese.
Given a video transcript, produce an engaging title and description suitable for
a lifestyle-sharing platform. Respond with JSON only, no prose, no code fences:
{"title": "...", "description": "...", "confidence": 0.0}
- title: catchy, at most 20 characters, no hashtags
- description: 100 to 800 characters, conversational, may end with 3-5 hashtag
  topics formatted like #话题
- confidence: 0.0-1.0, how well the transcript supported the copy`

// GenerateDraft asks the model for publishing copy based on the transcript.
// Low-confidence drafts are flagged uncertain rather than rejected.
func (c *Client) GenerateDraft(ctx context.Context, transcript, originalTitle, sourceURL string) (ContentDraft, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return ContentDraft{}, errors.New("generate draft: transcript required")
	}
	if truncated := truncateRunes(transcript, maxTranscriptContext); truncated != transcript {
		transcript = truncated + "\n[transcript truncated]"
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Original title: %s\n", strings.TrimSpace(originalTitle))
	if url := strings.TrimSpace(sourceURL); url != "" {
		fmt.Fprintf(&prompt, "Source: %s\n", url)
	}
	prompt.WriteString("Transcript:\n")
	prompt.WriteString(transcript)

	content, err := c.CompleteJSON(ctx, draftSystemPrompt, prompt.String())
	if err != nil {
		return ContentDraft{}, fmt.Errorf("generate draft: %w", err)
	}

	var draft ContentDraft
	if err := DecodeLLMJSON(content, &draft); err != nil {
		return ContentDraft{}, fmt.Errorf("generate draft: parse payload: %w", err)
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Description = strings.TrimSpace(draft.Description)
	if draft.Title == "" || draft.Description == "" {
		return ContentDraft{}, fmt.Errorf("generate draft: incomplete payload (payload snippet: %s)", summarizePayloadSnippet(content))
	}
	if draft.Confidence < 0 {
		draft.Confidence = 0
	}
	if draft.Confidence > 1 {
		draft.Confidence = 1
	}
	draft.Uncertain = draft.Confidence < uncertainConfidenceThreshold
	return draft, nil
}

// LengthWarnings reports guideline violations for the generated copy.
func (d ContentDraft) LengthWarnings() []string {
	var warnings []string
	if n := utf8.RuneCountInString(d.Title); n > titleRuneGuideline {
		warnings = append(warnings, fmt.Sprintf("title is %d characters (guideline %d)", n, titleRuneGuideline))
	}
	if n := utf8.RuneCountInString(d.Description); n < descriptionRuneMin || n > descriptionRuneMax {
		warnings = append(warnings, fmt.Sprintf("description is %d characters (guideline %d-%d)", n, descriptionRuneMin, descriptionRuneMax))
	}
	return warnings
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
