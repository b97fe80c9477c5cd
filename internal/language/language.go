// Package language resolves user-supplied audio language hints into the
// closed set of codes the transcription engine accepts.
package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto requests language auto-detection from the engine.
const Auto = "auto"

// English is the only translation target the engine supports.
const English = "en"

// Supported lists the audio languages the engine accepts, in ISO 639-1 form.
var Supported = []string{"en", "fr", "de", "ja", "ru", "es"}

var (
	supportedTags []language.Tag
	matcher       language.Matcher
	supportedSet  map[string]struct{}
)

func init() {
	supportedTags = make([]language.Tag, 0, len(Supported))
	supportedSet = make(map[string]struct{}, len(Supported))
	for _, code := range Supported {
		supportedTags = append(supportedTags, language.MustParse(code))
		supportedSet[code] = struct{}{}
	}
	matcher = language.NewMatcher(supportedTags)
}

// Normalize resolves a hint into a supported ISO 639-1 code or Auto.
// Regional variants collapse onto their base language ("de-AT" -> "de").
// Unrecognized or unsupported hints are rejected.
func Normalize(hint string) (string, error) {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" || hint == Auto {
		return Auto, nil
	}

	tag, err := language.Parse(hint)
	if err != nil {
		return "", fmt.Errorf("unrecognized language %q (allowed: auto, %s)", hint, strings.Join(Supported, ", "))
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return "", fmt.Errorf("unsupported language %q (allowed: auto, %s)", hint, strings.Join(Supported, ", "))
	}
	return Supported[idx], nil
}

// IsSupported reports whether code is an exact member of the supported set.
func IsSupported(code string) bool {
	_, ok := supportedSet[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// DisplayName returns the English display name for a code, or the uppercased
// code when it falls outside the recognized set. Used for log and summary
// output only.
func DisplayName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" || code == Auto {
		return "Auto"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(code)
}
