package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/clubchat-core/server/internal/agent/model"
	logx "github.com/clubchat-core/server/pkg/logger"
)

const (
	DefaultMaxSuggestions = 3
	// descriptionPreview bounds how much of a draft description is sent to the model.
	descriptionPreview = 600
)

// Options configures a Suggester.
type Options struct {
	ModelName      string
	Categories     []string
	MaxSuggestions int
	Timeout        time.Duration
}

// Suggester produces advisory text with a chat model. Its output is never
// used to validate an answer or move a dialogue forward.
type Suggester struct {
	names      compose.Runnable[map[string]any, []string]
	categories compose.Runnable[map[string]any, []string]
	review     compose.Runnable[map[string]any, []string]

	validCategories []string
	max             int
	timeout         time.Duration
	callbacks       einocb.Handler
}

// NewSuggester compiles one prompt -> model -> parser chain per task.
func NewSuggester(ctx context.Context, cm einomodel.BaseChatModel, opts Options) (*Suggester, error) {
	if cm == nil {
		return nil, errors.New("enrichment chat model is nil")
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = DefaultMaxSuggestions
	}

	s := &Suggester{
		validCategories: opts.Categories,
		max:             opts.MaxSuggestions,
		timeout:         opts.Timeout,
		callbacks:       newCallbacks(opts.ModelName),
	}

	var err error
	if s.names, err = buildChain(ctx, cm, namesPrompt, s.max); err != nil {
		return nil, fmt.Errorf("build names chain: %w", err)
	}
	if s.categories, err = buildChain(ctx, cm, categoriesPrompt, s.max); err != nil {
		return nil, fmt.Errorf("build categories chain: %w", err)
	}
	if s.review, err = buildChain(ctx, cm, reviewPrompt, s.max); err != nil {
		return nil, fmt.Errorf("build review chain: %w", err)
	}
	return s, nil
}

func buildChain(ctx context.Context, cm einomodel.BaseChatModel, task string, max int) (compose.Runnable[map[string]any, []string], error) {
	parse := compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) ([]string, error) {
		if msg == nil {
			return nil, nil
		}
		return ParseSuggestions(msg.Content, max), nil
	})
	return compose.NewChain[map[string]any, []string]().
		AppendChatTemplate(newTemplate(task)).
		AppendChatModel(cm).
		AppendLambda(parse).
		Compile(ctx)
}

// SuggestNames proposes alternatives for a name that could not be used.
func (s *Suggester) SuggestNames(ctx context.Context, d model.Draft, reason string) ([]string, error) {
	vars := baseVars(s.max)
	vars["Name"] = d.Name
	vars["Reason"] = reason
	vars["Category"] = orUnknown(d.Category)
	return s.run(ctx, "names", s.names, vars)
}

// SuggestCategories maps free text to catalog categories. Entries the model
// invents are dropped.
func (s *Suggester) SuggestCategories(ctx context.Context, input string) ([]string, error) {
	vars := baseVars(s.max)
	vars["Input"] = input
	vars["Categories"] = strings.Join(s.validCategories, ", ")
	got, err := s.run(ctx, "categories", s.categories, vars)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(got))
	for _, g := range got {
		for _, c := range s.validCategories {
			if strings.EqualFold(g, c) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

// ReviewDraft returns tips shown next to the confirmation summary.
func (s *Suggester) ReviewDraft(ctx context.Context, d model.Draft) ([]string, error) {
	vars := baseVars(s.max)
	vars["Name"] = d.Name
	vars["Category"] = orUnknown(d.Category)
	vars["Description"] = truncateRunes(d.Description, descriptionPreview)
	return s.run(ctx, "review", s.review, vars)
}

func (s *Suggester) run(ctx context.Context, task string, r compose.Runnable[map[string]any, []string], vars map[string]any) ([]string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	out, err := r.Invoke(ctx, vars, compose.WithCallbacks(s.callbacks))
	if err != nil {
		logx.Warn().Err(err).Str("task", task).Msg("enrichment failed")
		return nil, fmt.Errorf("enrichment %s: %w", task, err)
	}
	return out, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not chosen yet"
	}
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
