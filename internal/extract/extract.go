// Package extract pulls typed parameters out of free-form prompt text.
//
// Each recognizer scans the prompt for one parameter family and either sets
// its key or leaves it absent. Recognizers are independent and never fail:
// unrecognized text is ignored and malformed values are dropped.
package extract

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rcliao/forgecore/internal/model"
)

// BaseUnit is the scene length a size multiplier of 1 stands for.
const BaseUnit = 1.0

// Magnitudes maps size words to multiples of BaseUnit.
var Magnitudes = map[string]float64{
	"tiny":   0.25,
	"small":  0.5,
	"medium": 1,
	"large":  2,
	"big":    2,
	"huge":   4,
	"giant":  8,
}

// Colors is the fixed named-color table (linear RGBA).
var Colors = map[string][4]float64{
	"red":     {1, 0, 0, 1},
	"green":   {0, 1, 0, 1},
	"blue":    {0, 0, 1, 1},
	"yellow":  {1, 1, 0, 1},
	"orange":  {1, 0.5, 0, 1},
	"purple":  {0.5, 0, 0.5, 1},
	"pink":    {1, 0.41, 0.71, 1},
	"cyan":    {0, 1, 1, 1},
	"magenta": {1, 0, 1, 1},
	"white":   {1, 1, 1, 1},
	"black":   {0, 0, 0, 1},
	"gray":    {0.5, 0.5, 0.5, 1},
	"brown":   {0.4, 0.26, 0.13, 1},
	"gold":    {1, 0.77, 0.34, 1},
	"silver":  {0.75, 0.75, 0.75, 1},
}

var colorAliases = map[string]string{"grey": "gray"}

var materialWords = map[string]string{
	"metal":       model.MaterialMetallic,
	"metallic":    model.MaterialMetallic,
	"chrome":      model.MaterialMetallic,
	"steel":       model.MaterialMetallic,
	"glass":       model.MaterialGlass,
	"transparent": model.MaterialGlass,
	"plastic":     model.MaterialPlastic,
	"rough":       model.MaterialRough,
	"matte":       model.MaterialRough,
}

var shapeWords = map[string]string{
	"cube": model.ShapeCube, "cubes": model.ShapeCube, "box": model.ShapeCube, "boxes": model.ShapeCube,
	"sphere": model.ShapeSphere, "spheres": model.ShapeSphere, "ball": model.ShapeSphere, "balls": model.ShapeSphere,
	"cylinder": model.ShapeCylinder, "cylinders": model.ShapeCylinder,
	"cone": model.ShapeCone, "cones": model.ShapeCone,
	"plane": model.ShapePlane, "planes": model.ShapePlane,
	"torus": model.ShapeTorus, "tori": model.ShapeTorus, "toruses": model.ShapeTorus,
	"donut": model.ShapeTorus, "donuts": model.ShapeTorus,
}

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

const num = `(-?\d+(?:\.\d+)?)`

// sep separates the components of a coordinate triple: a comma or whitespace.
const sep = `(?:\s*,\s*|\s+)`

var (
	parenTriple   = regexp.MustCompile(`\(\s*` + num + sep + num + sep + num + `\s*\)`)
	keywordTriple = regexp.MustCompile(`\b(?:at|location|position)\s*:?\s*` + num + sep + num + sep + num + `\b`)

	explicitSize = regexp.MustCompile(`\b(?:size|scale)\s*(?:of|=|:)?\s*` + num + `\b`)
	unitSize     = regexp.MustCompile(num + `\s*(?:units?|meters?|metres?|m)\b`)
	radiusSize   = regexp.MustCompile(`\bradius\s*(?:of|=|:)?\s*` + num + `\b`)

	colorRe    = regexp.MustCompile(`\b(` + alternation(keys(Colors), keys(colorAliases)) + `)\b`)
	materialRe = regexp.MustCompile(`\b(` + alternation(keys(materialWords)) + `)\b`)
	shapeRe    = regexp.MustCompile(`\b(` + alternation(keys(shapeWords)) + `)\b`)
	magnitudes = regexp.MustCompile(`\b(` + alternation(keys(Magnitudes)) + `)\b`)
	countRe    = regexp.MustCompile(`\b(\d+|` + alternation(keys(numberWords)) + `)\s+(?:[a-z]+\s+){0,3}?(` + alternation(keys(shapeWords)) + `)\b`)
)

// Extract runs every recognizer over the prompt.
func Extract(prompt string) model.Params {
	text := strings.ToLower(prompt)
	return model.Params{
		Shape:    shape(text),
		Size:     size(text),
		Location: location(text),
		Color:    color(text),
		Material: material(text),
		Count:    count(text),
	}
}

func shape(text string) *string {
	m := shapeRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	s := shapeWords[m[1]]
	return &s
}

func size(text string) *float64 {
	var v float64
	switch {
	case explicitSize.MatchString(text):
		v = parseNum(explicitSize.FindStringSubmatch(text)[1])
	case radiusSize.MatchString(text):
		v = 2 * parseNum(radiusSize.FindStringSubmatch(text)[1])
	case unitSize.MatchString(text):
		v = parseNum(unitSize.FindStringSubmatch(text)[1])
	case magnitudes.MatchString(text):
		v = Magnitudes[magnitudes.FindStringSubmatch(text)[1]]
	default:
		return nil
	}
	v *= BaseUnit
	if math.IsNaN(v) || v <= 0 || v > model.MaxSize {
		return nil
	}
	return &v
}

func location(text string) *model.Vec3 {
	m := parenTriple.FindStringSubmatch(text)
	if m == nil {
		m = keywordTriple.FindStringSubmatch(text)
	}
	if m == nil {
		return nil
	}
	v := model.Vec3{parseNum(m[1]), parseNum(m[2]), parseNum(m[3])}
	if !v.Finite() {
		return nil
	}
	return &v
}

func color(text string) *model.Color {
	m := colorRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	name := m[1]
	if alias, ok := colorAliases[name]; ok {
		name = alias
	}
	return &model.Color{Name: name, RGBA: Colors[name]}
}

func material(text string) *string {
	m := materialRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	s := materialWords[m[1]]
	return &s
}

func count(text string) *int {
	for _, loc := range countRe.FindAllStringSubmatchIndex(text, -1) {
		// A number trailing another number belongs to a coordinate, not a count.
		before := strings.TrimRight(text[:loc[0]], " \t")
		if before != "" && strings.ContainsAny(before[len(before)-1:], "0123456789,.") {
			continue
		}
		word := text[loc[2]:loc[3]]
		n, ok := numberWords[word]
		if !ok {
			var err error
			n, err = strconv.Atoi(word)
			if err != nil {
				continue
			}
		}
		if n < 1 || n > model.MaxCount {
			return nil
		}
		return &n
	}
	return nil
}

func parseNum(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// alternation joins words into a regexp alternation, longest first.
func alternation(lists ...[]string) string {
	var words []string
	for _, l := range lists {
		words = append(words, l...)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, "|")
}
