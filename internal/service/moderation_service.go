package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/panelmgmt/pms-core/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ToxicityRejectThreshold is the 0-100 toxicity score at which a submitted
// question is auto-flagged.
const ToxicityRejectThreshold = 50

const moderationPrompt = `You are a content moderator for an academic Q&A tool.
Rate the toxicity of the following student-submitted question on a scale from 0 to 100,
where 0 is perfectly civil and 100 is severely toxic (insults, threats, profanity, harassment).
Respond with ONLY the integer score, nothing else.

Question: %s`

// ModerationService scores submitted question text for toxicity. Moderation
// is advisory: any upstream failure yields score 0 so a model outage never
// blocks submissions.
type ModerationService interface {
	ToxicityScore(ctx context.Context, text string) int
}

type moderationService struct {
	client *genai.GenerativeModel
}

func NewModerationService(cfg *config.Config) (ModerationService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. ModerationService will not function.")
		return &moderationService{client: nil}, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Gemini client")
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-1.5-flash")
	return &moderationService{client: model}, nil
}

func (s *moderationService) ToxicityScore(ctx context.Context, text string) int {
	if s.client == nil {
		return 0
	}

	resp, err := s.client.GenerateContent(ctx, genai.Text(fmt.Sprintf(moderationPrompt, text)))
	if err != nil {
		log.Error().Err(err).Msg("Gemini moderation call failed, treating as non-toxic")
		return 0
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Msg("Gemini moderation returned no candidates, treating as non-toxic")
		return 0
	}

	var raw string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw += string(txt)
		}
	}

	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Warn().Str("response", raw).Msg("Gemini moderation returned a non-integer score, treating as non-toxic")
		return 0
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
