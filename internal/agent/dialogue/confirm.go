package dialogue

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clubchat-core/server/internal/agent/model"
)

// DefaultPreviewLength bounds free-text fields in the confirmation summary.
const DefaultPreviewLength = 200

// Intent is the meaning of a reply at the confirm stage.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentAffirmative
	IntentNegative
	IntentCancel
)

var (
	affirmativeWords = wordSet("yes", "y", "yeah", "yep", "sure", "ok", "okay", "confirm", "correct", "right",
		"да", "ага", "конечно", "верно", "подтверждаю", "ок", "иә", "все верно", "всё верно", "да, все верно")
	negativeWords = wordSet("no", "n", "nope", "edit", "change", "wrong",
		"нет", "изменить", "исправить", "неверно", "жоқ")
	cancelWords = wordSet("cancel", "stop", "abort", "quit",
		"отмена", "отменить", "стоп", "выход")

	// Global commands are matched exactly on every turn.
	globalCancel = wordSet("cancel", "stop", "отмена", "стоп")
	globalHelp   = wordSet("help", "помощь", "?")

	backWords = wordSet("back", "назад", "none", "nothing", "ничего")
)

// Confirmation renders drafts and interprets confirm replies.
type Confirmation struct {
	PreviewLength int
}

// Summary lists the collected fields, numbered so the edit stage can refer
// to them. Long values are cut to PreviewLength runes plus "...".
func (c Confirmation) Summary(d model.Draft) string {
	limit := c.PreviewLength
	if limit <= 0 {
		limit = DefaultPreviewLength
	}
	var b strings.Builder
	b.WriteString("Please check your club:\n")
	for i, f := range model.Fields {
		v := d.Get(f)
		if v == "" {
			v = "(not set)"
		}
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, f.Label(), truncate(v, limit))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Prompt is the question asked after the summary.
func (c Confirmation) Prompt() string {
	return "Is everything correct? Reply \"yes\" to create the club, \"no\" to change something or \"cancel\" to stop."
}

// EditPrompt lists the fields that can be changed.
func (c Confirmation) EditPrompt() string {
	var b strings.Builder
	b.WriteString("Which field do you want to change? Reply with its number or name:\n")
	for i, f := range model.Fields {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f.Label())
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// classifyReply maps a confirm-stage reply to an intent. The whole reply is
// tried first, then its first word, so "да, создавай" is affirmative.
func classifyReply(msg string) Intent {
	n := normalize(msg)
	if n == "" {
		return IntentUnknown
	}
	if i := lookupIntent(n); i != IntentUnknown {
		return i
	}
	if first := firstWord(n); first != n {
		return lookupIntent(first)
	}
	return IntentUnknown
}

func lookupIntent(s string) Intent {
	switch {
	case has(cancelWords, s):
		return IntentCancel
	case has(affirmativeWords, s):
		return IntentAffirmative
	case has(negativeWords, s):
		return IntentNegative
	}
	return IntentUnknown
}

type command int

const (
	commandNone command = iota
	commandCancel
	commandHelp
)

func globalCommand(msg string) command {
	n := normalize(msg)
	switch {
	case has(globalCancel, n):
		return commandCancel
	case has(globalHelp, n):
		return commandHelp
	}
	return commandNone
}

// minStemMatch keeps short words such as "нов" itself from matching a stem.
const minStemMatch = 4

var (
	createWords = wordSet("create", "new", "start", "begin", "club", "yes", "go", "ok", "клуб", "хочу", "да", "начать", "ок")
	createStems = []string{"creat", "созда", "нов", "откры"}
)

// hasCreateIntent reports whether a welcome-stage message asks to start.
func hasCreateIntent(msg string) bool {
	for _, w := range words(normalize(msg)) {
		if has(createWords, w) {
			return true
		}
		if utf8.RuneCountInString(w) < minStemMatch {
			continue
		}
		for _, stem := range createStems {
			if strings.HasPrefix(w, stem) {
				return true
			}
		}
	}
	return false
}

var fieldAliases = map[string]model.Field{
	"name": model.FieldName, "название": model.FieldName, "имя": model.FieldName,
	"category": model.FieldCategory, "категория": model.FieldCategory,
	"description": model.FieldDescription, "описание": model.FieldDescription,
	"email": model.FieldEmail, "e-mail": model.FieldEmail, "mail": model.FieldEmail, "почта": model.FieldEmail,
	"phone": model.FieldPhone, "телефон": model.FieldPhone, "номер": model.FieldPhone,
}

// selectField resolves an edit-stage reply by number, key or alias.
func selectField(msg string) (model.Field, bool) {
	n := normalize(msg)
	if i, err := strconv.Atoi(n); err == nil {
		if i >= 1 && i <= len(model.Fields) {
			return model.Fields[i-1], true
		}
		return "", false
	}
	if f, ok := fieldAliases[n]; ok {
		return f, true
	}
	for _, w := range words(n) {
		if f, ok := fieldAliases[w]; ok {
			return f, true
		}
	}
	return "", false
}

// normalize lowercases, trims and drops trailing punctuation.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimRightFunc(s, func(r rune) bool {
		return r == '.' || r == '!' || r == ','
	})
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

func firstWord(s string) string {
	if w := words(s); len(w) > 0 {
		return w[0]
	}
	return s
}

func wordSet(ws ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		out[w] = struct{}{}
	}
	return out
}

func has(set map[string]struct{}, s string) bool {
	_, ok := set[s]
	return ok
}
