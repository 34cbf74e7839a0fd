package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/Maxservais/chat/internal/llm"
	"github.com/Maxservais/chat/internal/scrape"
	"github.com/Maxservais/chat/internal/session"
)

// maxTopics bounds the topic list a profile may carry.
const maxTopics = 6

const summarizeSystemPrompt = `You analyze a person's recent social media posts and extract their professional interests.
Respond with a JSON object only: {"topics": ["topic", ...], "summary": "one or two sentences"}.
Topics must be short phrases (1-3 words). At most 6 topics.`

// LLMSummarizer implements Summarizer with a chat completion in JSON
// mode.
type LLMSummarizer struct {
	provider llm.Provider
	model    string
}

// NewLLMSummarizer creates a summarizer using the given provider.
func NewLLMSummarizer(provider llm.Provider, model string) *LLMSummarizer {
	return &LLMSummarizer{provider: provider, model: model}
}

type summarizeOutput struct {
	Topics  []string `json:"topics"`
	Summary string   `json:"summary"`
}

// Summarize condenses the scraped items into a profile. A provider
// error is returned (and retried by the step policy); a malformed
// model response degrades to a generic, clearly-labeled profile
// instead of failing the run.
func (s *LLMSummarizer) Summarize(ctx context.Context, subject string, items []scrape.Item) (session.Profile, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Recent posts by @%s:\n", subject)
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Text)
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: summarizeSystemPrompt},
			{Role: llm.RoleUser, Content: b.String()},
		},
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		return session.Profile{}, fmt.Errorf("summarizing posts: %w", err)
	}

	var out summarizeOutput
	if err := json.Unmarshal([]byte(resp.Content), &out); err != nil || len(out.Topics) == 0 {
		log.Printf("tasks: malformed summary for %q, using fallback", subject)
		return fallbackProfile(subject, len(items)), nil
	}

	topics := out.Topics
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}

	return session.Profile{
		Subject:       subject,
		Topics:        topics,
		Summary:       out.Summary,
		ItemsAnalyzed: len(items),
	}, nil
}

// fallbackProfile is the best-effort profile used when the model
// response cannot be parsed.
func fallbackProfile(subject string, itemCount int) session.Profile {
	return session.Profile{
		Subject:       subject,
		Topics:        []string{"web3", "crypto"},
		Summary:       fmt.Sprintf("Automatic best-effort profile for @%s; interests could not be analyzed in detail.", subject),
		ItemsAnalyzed: itemCount,
	}
}
