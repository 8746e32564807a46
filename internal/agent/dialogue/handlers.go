package dialogue

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/clubchat-core/server/internal/agent/commit"
	"github.com/clubchat-core/server/internal/agent/fields"
	"github.com/clubchat-core/server/internal/agent/model"
	logx "github.com/clubchat-core/server/pkg/logger"
)

func (e *Engine) handleWelcome(_ context.Context, t *turn) outcome {
	if !hasCreateIntent(t.msg) {
		return outcome{reply: welcomeText}
	}
	t.state.Stage = nextStage[model.StageWelcome]
	return outcome{reply: "Great, let's create a club! " + e.question(t.state.Stage), persist: true}
}

func (e *Engine) handleName(ctx context.Context, t *turn) outcome {
	name, _ := fields.ExtractText(t.msg)
	res := e.validator.Name(name)
	if !res.IsValid {
		return reject(res, e.question(model.StageName))
	}

	dup, err := e.names.CheckName(ctx, name)
	if err != nil {
		return e.lookupFailed(t, err)
	}
	res.Merge(dup)
	if !res.IsValid {
		out := reject(res, "")
		draft := t.state.Draft()
		draft.Name = name
		out.suggestions = appendUnique(out.suggestions, e.suggestNames(ctx, draft, res.FirstError())...)
		return out
	}
	return e.accept(ctx, t, model.FieldName, name, res)
}

func (e *Engine) handleCategory(ctx context.Context, t *turn) outcome {
	category, res := e.validator.Category(t.msg)
	if !res.IsValid {
		category, res = e.names.ResolveCategory(t.msg)
	}
	if !res.IsValid {
		out := reject(res, "")
		out.suggestions = appendUnique(e.suggestCategories(ctx, t.msg), out.suggestions...)
		return out
	}
	return e.accept(ctx, t, model.FieldCategory, category, res)
}

func (e *Engine) handleDescription(ctx context.Context, t *turn) outcome {
	text, _ := fields.ExtractText(t.msg)
	res := e.validator.Description(text)
	if !res.IsValid {
		return reject(res, "")
	}
	return e.accept(ctx, t, model.FieldDescription, text, res)
}

func (e *Engine) handleEmail(ctx context.Context, t *turn) outcome {
	email, _ := fields.ExtractEmail(t.msg)
	res := e.validator.Email(email)
	if !res.IsValid {
		return reject(res, "")
	}
	return e.accept(ctx, t, model.FieldEmail, email, res)
}

func (e *Engine) handlePhone(ctx context.Context, t *turn) outcome {
	candidate, _ := fields.ExtractPhone(t.msg)
	phone, res := e.validator.Phone(candidate)
	if !res.IsValid {
		return reject(res, "")
	}
	return e.accept(ctx, t, model.FieldPhone, phone, res)
}

func (e *Engine) handleConfirm(ctx context.Context, t *turn) outcome {
	switch classifyReply(t.msg) {
	case IntentAffirmative:
		return e.commit(ctx, t)
	case IntentNegative:
		t.state.Stage = model.StageEdit
		return outcome{reply: e.confirm.EditPrompt(), persist: true}
	case IntentCancel:
		return outcome{cancel: true}
	}
	return outcome{reply: "Please answer \"yes\", \"no\" or \"cancel\". " + e.confirm.Prompt(), rejected: true}
}

func (e *Engine) handleEdit(ctx context.Context, t *turn) outcome {
	if has(backWords, normalize(t.msg)) {
		t.state.Stage = model.StageConfirm
		reply, suggestions := e.confirmation(ctx, t.state)
		return outcome{reply: reply, suggestions: suggestions, persist: true}
	}
	if classifyReply(t.msg) == IntentCancel {
		return outcome{cancel: true}
	}
	f, ok := selectField(t.msg)
	if !ok {
		return outcome{reply: e.confirm.EditPrompt(), rejected: true}
	}
	t.state.Stage = fieldStage[f]
	t.state.Editing = true
	reply := e.question(t.state.Stage)
	if cur := t.state.Data[string(f)]; cur != "" {
		reply += fmt.Sprintf(" Current value: %s", truncate(cur, e.confirm.PreviewLength))
	}
	return outcome{reply: reply, persist: true}
}

// accept stores a validated value and moves on: to the next stage, or back
// to confirm when the value was an edit.
func (e *Engine) accept(ctx context.Context, t *turn, f model.Field, value string, res model.ValidationResult) outcome {
	st := t.state
	st.Data[string(f)] = value

	var next model.Stage
	if st.Editing {
		st.Editing = false
		next = model.StageConfirm
	} else {
		next = nextStage[st.Stage]
	}
	st.Stage = next

	out := outcome{persist: true, suggestions: res.Suggestions}
	var reply string
	if next == model.StageConfirm {
		summary, review := e.confirmation(ctx, st)
		reply = summary
		out.suggestions = appendUnique(out.suggestions, review...)
	} else {
		reply = "Got it. " + e.question(next)
	}
	if len(res.Warnings) > 0 {
		reply = "Note: " + strings.Join(res.Warnings, " ") + "\n" + reply
	}
	out.reply = reply
	return out
}

// confirmation renders the summary, the question and advisory review tips.
func (e *Engine) confirmation(ctx context.Context, st *model.ConversationState) (string, []string) {
	d := st.Draft()
	return e.confirm.Summary(d) + "\n\n" + e.confirm.Prompt(), e.review(ctx, d)
}

func (e *Engine) commit(ctx context.Context, t *turn) outcome {
	st := t.state
	res, err := e.committer.Commit(ctx, commit.Request{
		SessionID: st.SessionID,
		CreatedAt: st.CreatedAt,
		OwnerID:   st.OwnerID,
		Draft:     st.Draft(),
	})
	if err != nil {
		msg := res.Error
		if msg == "" {
			msg = commit.FailureMessage
		}
		return outcome{reply: fmt.Sprintf("%s (error id: %s)", msg, res.ErrorID), rejected: true, errorID: res.ErrorID}
	}
	if !res.Success {
		return e.commitInvalid(ctx, st, res)
	}

	st.Stage = model.StageDone
	st.ClubID = res.ClubID
	if res.AlreadyCreated {
		// The stored club wins over edits made after it was created.
		if res.Committed.Complete() && res.Committed != st.Draft() {
			st.Data = res.Committed.Data()
			return outcome{reply: AlreadyCreatedReply + " " + EditsNotAppliedReply, persist: true}
		}
		return outcome{reply: AlreadyCreatedReply, persist: true}
	}
	return outcome{reply: fmt.Sprintf("Your club %q has been created!", st.Data[string(model.FieldName)]), persist: true}
}

// commitInvalid keeps the dialogue at confirm and lists what has to change.
func (e *Engine) commitInvalid(ctx context.Context, st *model.ConversationState, res commit.Result) outcome {
	failed := make([]model.Field, 0, len(res.ValidationErrors))
	for f := range res.ValidationErrors {
		failed = append(failed, f)
	}
	sort.Slice(failed, func(i, j int) bool { return fieldIndex(failed[i]) < fieldIndex(failed[j]) })

	var b strings.Builder
	b.WriteString(res.Error)
	for _, f := range failed {
		fmt.Fprintf(&b, "\n- %s: %s", f.Label(), strings.Join(res.ValidationErrors[f], " "))
	}
	b.WriteString("\nReply \"no\" to change your answers.")

	out := outcome{reply: b.String(), rejected: true}
	if _, ok := res.ValidationErrors[model.FieldName]; ok {
		out.suggestions = e.suggestNames(ctx, st.Draft(), strings.Join(res.ValidationErrors[model.FieldName], " "))
	}
	return out
}

// lookupFailed handles a repository error during a field check. Nothing is
// stored and the user is asked to retry.
func (e *Engine) lookupFailed(t *turn, err error) outcome {
	logx.Error().Err(err).Str("session_id", t.state.SessionID).Str("stage", t.state.Stage.String()).Msg("lookup failed")
	return outcome{reply: "We could not check your answer right now. Please try again.", rejected: true}
}

func reject(res model.ValidationResult, hint string) outcome {
	reply := strings.Join(res.Errors, "\n")
	if hint != "" {
		reply += "\n" + hint
	}
	return outcome{reply: reply, suggestions: res.Suggestions, rejected: true}
}

func (e *Engine) suggestNames(ctx context.Context, d model.Draft, reason string) []string {
	if e.enricher == nil {
		return nil
	}
	out, err := e.enricher.SuggestNames(ctx, d, reason)
	if err != nil {
		return nil
	}
	return out
}

func (e *Engine) suggestCategories(ctx context.Context, input string) []string {
	if e.enricher == nil {
		return nil
	}
	out, err := e.enricher.SuggestCategories(ctx, input)
	if err != nil {
		return nil
	}
	return out
}

func (e *Engine) review(ctx context.Context, d model.Draft) []string {
	if e.enricher == nil {
		return nil
	}
	out, err := e.enricher.ReviewDraft(ctx, d)
	if err != nil {
		return nil
	}
	return out
}

func fieldIndex(f model.Field) int {
	for i, v := range model.Fields {
		if v == f {
			return i
		}
	}
	return len(model.Fields)
}

func appendUnique(dst []string, src ...string) []string {
	seen := make(map[string]struct{}, len(dst)+len(src))
	out := make([]string, 0, len(dst)+len(src))
	for _, s := range append(append([]string{}, dst...), src...) {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
