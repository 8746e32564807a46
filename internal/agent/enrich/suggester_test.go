package enrich

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"github.com/clubchat-core/server/internal/agent/model"
)

type fakeChatModel struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts [][]*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, input)
	if f.err != nil {
		return nil, f.err
	}
	msg := schema.AssistantMessage(f.reply, nil)
	msg.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}
	return msg, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeChatModel) lastUserPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	last := f.prompts[len(f.prompts)-1]
	return last[len(last)-1].Content
}

func newTestSuggester(t *testing.T, cm *fakeChatModel) *Suggester {
	t.Helper()
	s, err := NewSuggester(context.Background(), cm, Options{
		ModelName:      "gemini-2.5-flash-lite",
		Categories:     []string{"Sports", "Games", "Music"},
		MaxSuggestions: 2,
	})
	require.NoError(t, err)
	return s
}

func TestSuggestNames(t *testing.T) {
	cm := &fakeChatModel{reply: "1. Chess Knights##- Rook Society\nPawn Stars<|COMPLETE|>ignored"}
	s := newTestSuggester(t, cm)

	got, err := s.SuggestNames(context.Background(), model.Draft{Name: "Chess Club"}, "already taken")
	require.NoError(t, err)
	require.Equal(t, []string{"Chess Knights", "Rook Society"}, got)

	prompt := cm.lastUserPrompt()
	require.Contains(t, prompt, `"Chess Club"`)
	require.Contains(t, prompt, "already taken")
	require.Contains(t, prompt, "not chosen yet")

	system := cm.prompts[0][0].Content
	require.Contains(t, system, "at most 2 suggestions")
	require.Contains(t, system, "<|COMPLETE|>")
}

func TestSuggestCategoriesKeepsOnlyCatalogEntries(t *testing.T) {
	cm := &fakeChatModel{reply: "games##Cooking##Sports"}
	s := newTestSuggester(t, cm)

	got, err := s.SuggestCategories(context.Background(), "board game nights")
	require.NoError(t, err)
	require.Equal(t, []string{"Games"}, got)
	require.Contains(t, cm.lastUserPrompt(), "Sports, Games, Music")
}

func TestReviewDraftTruncatesDescription(t *testing.T) {
	cm := &fakeChatModel{reply: "Add a meeting schedule."}
	s := newTestSuggester(t, cm)

	d := model.Draft{Name: "Chess Club", Category: "Games", Description: strings.Repeat("x", 1000)}
	got, err := s.ReviewDraft(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, []string{"Add a meeting schedule."}, got)
	require.NotContains(t, cm.lastUserPrompt(), strings.Repeat("x", 601))
}

func TestSuggesterPropagatesModelError(t *testing.T) {
	cm := &fakeChatModel{err: errors.New("quota exceeded")}
	s := newTestSuggester(t, cm)

	_, err := s.SuggestNames(context.Background(), model.Draft{Name: "Chess"}, "taken")
	require.Error(t, err)
	require.Contains(t, err.Error(), "quota exceeded")
}

func TestNewSuggesterRequiresModel(t *testing.T) {
	_, err := NewSuggester(context.Background(), nil, Options{})
	require.Error(t, err)
}

func TestNewGeminiChatModelRequiresKey(t *testing.T) {
	_, err := NewGeminiChatModel(context.Background(), model.EnrichmentConfig{Model: "gemini-2.5-flash-lite"})
	require.Error(t, err)
}
