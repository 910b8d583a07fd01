// Package language annotates messages with their detected language for
// the presentation layer. The core never translates; it only exposes the
// Translated display flag, which a renderer may set when it shows a body
// in a language other than the detected one.
package language

import (
	"github.com/abadojack/whatlanggo"
)

// Detection is the presentation-side annotation for one message body.
type Detection struct {
	Code       string  // ISO 639-1, empty when undetermined
	Name       string  // English language name
	Confidence float64 // 0..1
}

// minConfidence filters out guesses on gibberish or near-empty bodies.
// Ordinary chat prose scores well above this; whatlanggo's own reliability
// flag is far stricter than message-sized inputs can satisfy.
const minConfidence = 0.25

// Detect identifies the language of a message body. Short or empty bodies
// come back with an empty code rather than a low-confidence guess.
func Detect(content string) Detection {
	if content == "" {
		return Detection{}
	}

	info := whatlanggo.Detect(content)
	if info.Confidence < minConfidence {
		return Detection{}
	}

	return Detection{
		Code:       info.Lang.Iso6391(),
		Name:       info.Lang.String(),
		Confidence: info.Confidence,
	}
}

// NeedsTranslation reports whether a detected language differs from the
// reader's preferred one. Undetermined detections never request one.
func NeedsTranslation(d Detection, preferredCode string) bool {
	return d.Code != "" && preferredCode != "" && d.Code != preferredCode
}
