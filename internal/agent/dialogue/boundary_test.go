package dialogue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clubchat-core/server/internal/agent/model"
	errx "github.com/clubchat-core/server/internal/core/error"
)

func TestDecodeTurn(t *testing.T) {
	in, err := DecodeTurn([]byte(`{"session_id":"s-1","message":"hi","user_id":"u","extra":true}`))
	require.NoError(t, err)
	require.Equal(t, model.TurnInput{SessionID: "s-1", Message: "hi", UserID: "u"}, in)

	_, err = DecodeTurn([]byte(`{"message":`))
	require.Error(t, err)
	require.Equal(t, errx.KindInput, errx.KindOf(err))

	_, err = DecodeTurn([]byte("  "))
	require.Equal(t, errx.KindInput, errx.KindOf(err))
}

func TestHandleJSON(t *testing.T) {
	h := newHarness(t, harnessOpts{options: []Option{WithIDGenerator(func() string { return "fresh-id" })}})
	ctx := context.Background()

	out := h.engine.HandleJSON(ctx, []byte(`not json`))
	require.False(t, out.Success)
	require.Empty(t, out.SessionID)
	require.Empty(t, h.mr.Keys())

	out = h.engine.HandleJSON(ctx, []byte(`{"message":"создать клуб"}`))
	require.True(t, out.Success)
	require.Equal(t, "fresh-id", out.SessionID)
	require.Equal(t, model.StageName.String(), out.Stage)

	out = h.engine.HandleJSON(ctx, []byte(`{"session_id":"fresh-id","message":""}`))
	require.False(t, out.Success)
	require.Equal(t, EmptyMessageReply, out.Message)
	require.Equal(t, model.StageName, h.stored(t, "fresh-id").Stage)
}
