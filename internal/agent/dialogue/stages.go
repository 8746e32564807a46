package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/clubchat-core/server/internal/agent/model"
)

// turn is the working set a stage handler sees. Handlers mutate state only
// when they also set outcome.persist.
type turn struct {
	state *model.ConversationState
	msg   string
}

type outcome struct {
	reply       string
	suggestions []string
	persist     bool
	rejected    bool
	cancel      bool
	errorID     string
}

type stageHandler func(ctx context.Context, t *turn) outcome

// nextStage is the happy-path transition table.
var nextStage = map[model.Stage]model.Stage{
	model.StageWelcome:     model.StageName,
	model.StageName:        model.StageCategory,
	model.StageCategory:    model.StageDescription,
	model.StageDescription: model.StageEmail,
	model.StageEmail:       model.StagePhone,
	model.StagePhone:       model.StageConfirm,
}

var stageProgress = map[model.Stage]int{
	model.StageWelcome:     0,
	model.StageName:        10,
	model.StageCategory:    25,
	model.StageDescription: 40,
	model.StageEmail:       60,
	model.StagePhone:       75,
	model.StageConfirm:     90,
	model.StageEdit:        90,
	model.StageDone:        100,
	model.StageCancelled:   0,
}

// ProgressOf maps a stage to its completion percentage.
func ProgressOf(s model.Stage) int {
	return stageProgress[s]
}

var fieldStage = map[model.Field]model.Stage{
	model.FieldName:        model.StageName,
	model.FieldCategory:    model.StageCategory,
	model.FieldDescription: model.StageDescription,
	model.FieldEmail:       model.StageEmail,
	model.FieldPhone:       model.StagePhone,
}

func (e *Engine) stageHandlers() map[model.Stage]stageHandler {
	return map[model.Stage]stageHandler{
		model.StageWelcome:     e.handleWelcome,
		model.StageName:        e.handleName,
		model.StageCategory:    e.handleCategory,
		model.StageDescription: e.handleDescription,
		model.StageEmail:       e.handleEmail,
		model.StagePhone:       e.handlePhone,
		model.StageConfirm:     e.handleConfirm,
		model.StageEdit:        e.handleEdit,
	}
}

// checkHandlers fails when a non-terminal stage has no handler.
func checkHandlers(h map[model.Stage]stageHandler) error {
	for _, s := range model.Stages {
		if s.IsTerminal() {
			continue
		}
		if _, ok := h[s]; !ok {
			return fmt.Errorf("dialogue: no handler for stage %q", s)
		}
	}
	for _, s := range model.Stages {
		if _, ok := stageProgress[s]; !ok {
			return fmt.Errorf("dialogue: no progress value for stage %q", s)
		}
	}
	return nil
}

const welcomeText = "Hi! I can help you create a new club. Say \"create a club\" to start."

func (e *Engine) question(s model.Stage) string {
	switch s {
	case model.StageName:
		return "What is the name of your club?"
	case model.StageCategory:
		return "Which category fits your club best? Options: " + strings.Join(e.validator.Catalog().Names(), ", ") + "."
	case model.StageDescription:
		return "Describe your club in at least 200 characters: what members do, how often you meet and who can join."
	case model.StageEmail:
		return "What email address can members use to contact the club?"
	case model.StagePhone:
		return "What phone number can members call?"
	}
	return ""
}

var helpTexts = map[model.Stage]string{
	model.StageWelcome:     "Say \"create a club\" to start. You can type \"cancel\" at any time.",
	model.StageName:        "Send the club name: 3 to 100 characters with at least one letter. It must not match an existing active club.",
	model.StageCategory:    "Send one category from the list, or describe the club's activity and I will pick the closest category.",
	model.StageDescription: "Write at least 200 characters in two or more sentences about what the club does.",
	model.StageEmail:       "Send a permanent email address such as club@example.kz. Disposable mail services are not accepted.",
	model.StagePhone:       "Send a phone number with 10 to 15 digits, for example +7 701 234 56 78.",
	model.StageConfirm:     "Reply \"yes\" to create the club, \"no\" to change an answer or \"cancel\" to stop.",
	model.StageEdit:        "Reply with the number or name of the field to change, or \"back\" to return to the summary.",
}

// helpFor looks up the help for the last question asked.
func helpFor(st *model.ConversationState) string {
	if h, ok := helpTexts[st.LastQuestion]; ok {
		return h
	}
	if h, ok := helpTexts[st.Stage]; ok {
		return h
	}
	return helpTexts[model.StageWelcome]
}
