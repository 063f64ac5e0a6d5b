package prompt

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// stylePresets expand shorthand style prompts into full descriptor phrases
// for the inference provider. The stored prompt keeps the user's text.
var stylePresets = map[string]string{
	"anime":      "vibrant cel-shaded animation, bold outlines, saturated colors",
	"cyberpunk":  "neon-lit streets, rain-slicked surfaces, high contrast lighting",
	"noir":       "black and white film look, hard shadows, heavy grain",
	"watercolor": "soft washes of pigment, visible paper texture, loose edges",
	"claymation": "handcrafted clay figures, stop-motion texture, studio lighting",
}

// Normalize trims the prompt and collapses internal whitespace runs. A prompt
// of the form "style: <preset>" naming a known preset expands into the
// preset's descriptor phrase headed by the title-cased style name.
func Normalize(raw string) string {
	cleaned := strings.Join(strings.Fields(raw), " ")
	rest, ok := strings.CutPrefix(strings.ToLower(cleaned), "style:")
	if !ok {
		return cleaned
	}
	name := strings.TrimSpace(rest)
	desc, ok := stylePresets[name]
	if !ok {
		return cleaned
	}
	c := cases.Title(language.Und)
	return c.String(name) + " style, " + desc
}
