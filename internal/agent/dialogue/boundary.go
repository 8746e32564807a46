package dialogue

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/clubchat-core/server/internal/agent/model"
	errx "github.com/clubchat-core/server/internal/core/error"
	logx "github.com/clubchat-core/server/pkg/logger"
)

// MalformedRequestReply is returned when a turn cannot be decoded.
const MalformedRequestReply = "Malformed request: expected {\"session_id\": \"...\", \"message\": \"...\"}."

// DecodeTurn parses a JSON turn request. Unknown fields are ignored.
func DecodeTurn(raw []byte) (model.TurnInput, error) {
	var in model.TurnInput
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return in, errx.Input("empty request body")
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, errx.New(err, http.StatusBadRequest, "malformed turn request").WithKind(errx.KindInput)
	}
	return in, nil
}

// HandleJSON is the transport boundary: it decodes a request, runs the turn
// and always returns a reply. A missing session id is generated here.
func (e *Engine) HandleJSON(ctx context.Context, raw []byte) model.TurnOutput {
	in, err := DecodeTurn(raw)
	if err != nil {
		logx.Warn().Err(err).Msg("rejected turn request")
		return e.reply(model.TurnOutput{Message: MalformedRequestReply})
	}
	if in.SessionID == "" {
		in.SessionID = e.newID()
	}
	return e.Handle(ctx, in)
}
