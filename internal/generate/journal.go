package generate

import (
	"strings"

	"github.com/rcliao/forgecore/internal/intent"
	"github.com/rcliao/forgecore/internal/model"
)

// journal turns a journal prompt into a directive for the memory store.
// Prompts without a "header:" directive ask to show the current goal.
func journal(req Request) (model.Action, error) {
	header, payload, ok := intent.Directive(req.Prompt)
	if !ok {
		return model.NewJournalAction(model.JournalDirective{Kind: model.DirectiveShow}), nil
	}

	var kind string
	switch {
	case strings.HasSuffix(header, "goal"):
		kind = model.DirectiveGoal
	case strings.HasSuffix(header, "progress"):
		kind = model.DirectiveProgress
	default:
		kind = model.DirectiveNote
	}
	if payload == "" {
		return model.Action{}, fail(model.JournalEntry, "%s needs text after %q", kind, header)
	}
	return model.NewJournalAction(model.JournalDirective{Kind: kind, Text: payload}), nil
}
