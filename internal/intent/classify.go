// Package intent maps prompt text to an action category using an ordered
// table of keyword rules.
package intent

import (
	"regexp"
	"strings"

	"github.com/rcliao/forgecore/internal/extract"
	"github.com/rcliao/forgecore/internal/model"
)

// Rule matches a category when any of its phrases occurs as whole words.
type Rule struct {
	Category model.Category
	Phrases  []string
}

// Rules is evaluated top to bottom; the first match wins.
// Order: Export > Animate > MaterialCreate > SceneLayout > MeshCreate > JournalEntry.
var Rules = []Rule{
	{model.Export, []string{"export", "fbx", "unity", "unreal", "game engine"}},
	{model.Animate, []string{
		"animate", "animated", "animation", "keyframe", "keyframes",
		"bounce", "bouncing", "spin", "spinning", "rotate", "rotating",
	}},
	{model.MaterialCreate, []string{
		"material", "texture", "shader", "color", "colour", "paint",
		"metal", "metallic", "chrome", "steel", "glass", "transparent",
		"plastic", "rough", "matte",
	}},
	{model.SceneLayout, []string{
		"layout", "lay out", "arrange", "organize", "organise", "grid", "align",
		"camera", "light", "lights", "lighting", "studio", "dramatic",
		"set up", "setup",
	}},
	{model.MeshCreate, []string{
		"cube", "cubes", "box", "sphere", "spheres", "ball", "cylinder", "cylinders",
		"cone", "cones", "plane", "planes", "torus", "donut",
		"mesh", "primitive", "object", "model", "create", "add",
	}},
	{model.JournalEntry, []string{"goal", "progress", "journal", "note", "diary"}},
}

// directive matches a journal command header such as "Set daily goal:".
// Everything after the separator is free text and is not scanned for keywords.
// A dash separates only when spaced, so "goal-oriented" stays a plain word.
var directive = regexp.MustCompile(`(?i)^\s*((?:set\s+)?(?:(?:daily|today'?s)\s+)?goal|(?:log\s+)?progress|note|journal|diary)(?:\s*:|\s+-|-\s)\s*`)

// Classify returns the category of the prompt, or Unknown when no rule matches.
func Classify(prompt string) model.Category {
	c, _ := Explain(prompt)
	return c
}

// Match describes which rule decided a classification.
type Match struct {
	Category model.Category `json:"category"`
	Phrase   string         `json:"phrase,omitempty"`
	Rank     int            `json:"rank"`
}

// Explain classifies the prompt and reports the deciding rule and phrase.
func Explain(prompt string) (model.Category, Match) {
	text := ScanText(prompt)
	for i, r := range Rules {
		if p, ok := extract.FirstPhrase(text, r.Phrases...); ok {
			return r.Category, Match{Category: r.Category, Phrase: p, Rank: i}
		}
	}
	return model.Unknown, Match{Category: model.Unknown, Rank: len(Rules)}
}

// ScanText returns the part of the prompt that is scanned for keywords:
// the header alone for journal directives, the whole prompt otherwise.
func ScanText(prompt string) string {
	if loc := directive.FindStringSubmatchIndex(prompt); loc != nil {
		return prompt[loc[2]:loc[3]]
	}
	return prompt
}

// Directive splits a journal directive into its header and payload.
func Directive(prompt string) (header, payload string, ok bool) {
	loc := directive.FindStringSubmatchIndex(prompt)
	if loc == nil {
		return "", "", false
	}
	return strings.ToLower(prompt[loc[2]:loc[3]]), strings.TrimSpace(prompt[loc[1]:]), true
}
