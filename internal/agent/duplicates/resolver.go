package duplicates

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clubchat-core/server/internal/agent/fields"
	"github.com/clubchat-core/server/internal/agent/model"
	errx "github.com/clubchat-core/server/internal/core/error"
	logx "github.com/clubchat-core/server/pkg/logger"
)

const DefaultRelatedLimit = 3

// Resolver guards against name collisions and resolves near-miss categories.
type Resolver struct {
	clubs        model.ClubRepository
	catalog      *fields.Catalog
	related      bool
	relatedLimit int
}

type Option func(*Resolver)

// WithRelated toggles the related-names search used for suggestions.
func WithRelated(enabled bool) Option {
	return func(r *Resolver) { r.related = enabled }
}

// WithRelatedLimit caps how many similar names are suggested.
func WithRelatedLimit(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.relatedLimit = n
		}
	}
}

func NewResolver(clubs model.ClubRepository, catalog *fields.Catalog, opts ...Option) *Resolver {
	if catalog == nil {
		catalog = fields.NewCatalog()
	}
	r := &Resolver{clubs: clubs, catalog: catalog, related: true, relatedLimit: DefaultRelatedLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckName rejects a name used by an active club (case-sensitive exact
// match) and attaches similar names as suggestions. The returned error is a
// persistence failure; the result is meaningful only when it is nil.
func (r *Resolver) CheckName(ctx context.Context, name string) (model.ValidationResult, error) {
	res := model.NewValidationResult()
	name = strings.TrimSpace(name)

	exists, err := r.clubs.ActiveNameExists(ctx, name)
	if err != nil {
		return res, errx.Persistence(err, "name lookup failed")
	}
	if exists {
		res.Fail(fmt.Sprintf("A club named %q already exists. Please choose another name.", name))
	}

	if !r.related {
		return res, nil
	}
	token := firstToken(name)
	if token == "" {
		return res, nil
	}
	similar, err := r.clubs.SimilarNames(ctx, token, r.relatedLimit+1)
	if err != nil {
		logx.Warn().Err(err).Str("component", "duplicate_resolver").Msg("related names lookup failed")
		return res, nil
	}
	related := make([]string, 0, len(similar))
	for _, s := range similar {
		if s != name && len(related) < r.relatedLimit {
			related = append(related, s)
		}
	}
	if len(related) > 0 {
		res.Suggest("Similar existing clubs: " + strings.Join(related, ", "))
	}
	return res, nil
}

// ResolveCategory is the fallback after the substring match failed: it
// picks the category with the largest keyword overlap. With no overlap the
// result fails and lists every valid category.
func (r *Resolver) ResolveCategory(input string) (string, model.ValidationResult) {
	res := model.NewValidationResult()
	if name, hits := r.catalog.MatchKeywords(input); hits > 0 {
		res.Warn(fmt.Sprintf("Interpreted %q as %s.", strings.TrimSpace(input), name))
		return name, res
	}
	res.Fail(fields.UnknownCategoryMessage(r.catalog))
	res.Suggest(r.catalog.Names()...)
	return "", res
}

// firstToken returns the first word of name with at least three runes.
func firstToken(name string) string {
	for _, w := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if utf8.RuneCountInString(w) >= 3 {
			return w
		}
	}
	return ""
}
