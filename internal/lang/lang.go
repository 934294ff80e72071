// Package lang handles the language labels stored on events and questions and the tags used
// for transcription and translation.
package lang

import (
	"strings"

	"golang.org/x/text/language"
)

// Default is the language used when none is supplied.
const Default = "en"

// Normalize returns the canonical BCP 47 form of tag ("EN" -> "en", "pt_br" -> "pt-BR").
// An empty tag yields Default; ok is false when tag cannot be parsed.
func Normalize(tag string) (string, bool) {
	tag = strings.TrimSpace(strings.ReplaceAll(tag, "_", "-"))
	if tag == "" {
		return Default, true
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "", false
	}
	return t.String(), true
}

// OrDefault trims a stored language label and falls back to Default. Labels are free text
// ("pl", "polish") and are kept as given.
func OrDefault(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return Default
	}
	return label
}

// Source returns the base tag of a stored label for speech recognition, or "" when the label
// is not a language tag and the recognizer should detect the language itself.
func Source(label string) string {
	tag, ok := Normalize(label)
	if !ok {
		return ""
	}
	return Base(tag)
}

// Base returns the primary language subtag ("pt-BR" -> "pt").
func Base(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return strings.ToLower(tag)
	}
	b, _ := t.Base()
	return b.String()
}

// DisplayName returns the English name of tag, used in translation prompts.
func DisplayName(tag string) string {
	switch Base(tag) {
	case "en":
		return "English"
	case "pl":
		return "Polish"
	}
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	return t.String()
}
