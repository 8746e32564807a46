package duplicates

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clubchat-core/server/internal/agent/model"
	errx "github.com/clubchat-core/server/internal/core/error"
)

type fakeClubs struct {
	names      []string
	existsErr  error
	similarErr error
	fragments  []string
}

func (f *fakeClubs) ActiveNameExists(_ context.Context, name string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, n := range f.names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeClubs) SimilarNames(_ context.Context, fragment string, limit int) ([]string, error) {
	f.fragments = append(f.fragments, fragment)
	if f.similarErr != nil {
		return nil, f.similarErr
	}
	var out []string
	for _, n := range f.names {
		if strings.Contains(strings.ToLower(n), strings.ToLower(fragment)) && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeClubs) FindByCreationKey(context.Context, string) (*model.Club, error) { return nil, nil }
func (f *fakeClubs) CreateWithOwner(context.Context, *model.Club) error             { return nil }
func (f *fakeClubs) RecordFailedAttempt(context.Context, model.CreationAttempt) error {
	return nil
}

func TestCheckNameRejectsExactDuplicate(t *testing.T) {
	clubs := &fakeClubs{names: []string{"Chess Club", "Chess Masters"}}
	r := NewResolver(clubs, nil)

	res, err := r.CheckName(context.Background(), "Chess Club")
	require.NoError(t, err)
	require.False(t, res.IsValid)
	require.Contains(t, res.FirstError(), "already exists")
	require.Equal(t, []string{"Similar existing clubs: Chess Masters"}, res.Suggestions)
	require.Equal(t, []string{"Chess"}, clubs.fragments)
}

func TestCheckNameIsCaseSensitive(t *testing.T) {
	r := NewResolver(&fakeClubs{names: []string{"Chess Club"}}, nil)

	res, err := r.CheckName(context.Background(), "chess club")
	require.NoError(t, err)
	require.True(t, res.IsValid)
	require.Len(t, res.Suggestions, 1)
}

func TestCheckNameWithoutRelatedSearch(t *testing.T) {
	clubs := &fakeClubs{names: []string{"Chess Masters"}}
	r := NewResolver(clubs, nil, WithRelated(false))

	res, err := r.CheckName(context.Background(), "Chess Club")
	require.NoError(t, err)
	require.True(t, res.IsValid)
	require.Empty(t, res.Suggestions)
	require.Empty(t, clubs.fragments)
}

func TestCheckNameLookupFailure(t *testing.T) {
	r := NewResolver(&fakeClubs{existsErr: errors.New("db down")}, nil)

	_, err := r.CheckName(context.Background(), "Chess Club")
	require.Error(t, err)
	require.Equal(t, errx.KindPersistence, errx.KindOf(err))
}

func TestCheckNameRelatedFailureIsIgnored(t *testing.T) {
	r := NewResolver(&fakeClubs{similarErr: errors.New("timeout")}, nil)

	res, err := r.CheckName(context.Background(), "Chess Club")
	require.NoError(t, err)
	require.True(t, res.IsValid)
}

func TestCheckNameRelatedLimit(t *testing.T) {
	clubs := &fakeClubs{names: []string{"Chess A", "Chess B", "Chess C", "Chess D"}}
	r := NewResolver(clubs, nil, WithRelatedLimit(2))

	res, err := r.CheckName(context.Background(), "Chess Club")
	require.NoError(t, err)
	require.Equal(t, []string{"Similar existing clubs: Chess A, Chess B"}, res.Suggestions)
}

func TestResolveCategory(t *testing.T) {
	r := NewResolver(&fakeClubs{}, nil)

	name, res := r.ResolveCategory("we play chess")
	require.True(t, res.IsValid)
	require.Equal(t, "Games", name)
	require.Len(t, res.Warnings, 1)

	name, res = r.ResolveCategory("cooking")
	require.False(t, res.IsValid)
	require.Empty(t, name)
	require.Contains(t, res.FirstError(), "Sports, Arts, Music")
	require.Contains(t, res.Suggestions, "Travel")
}
