// Package language describes the ten languages VoiceMitra teaches in and the
// locale metadata the browser speech layer needs for each of them.
package language

import (
	"slices"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// Default is used whenever no language is given or detection finds nothing.
const Default = "en"

// Info describes one supported language.
type Info struct {
	Code string `json:"code"`
	// Name is the English name used inside generation prompts.
	Name string `json:"name"`
	// NativeName is shown in language pickers.
	NativeName        string   `json:"nativeName"`
	RecognitionLocale string   `json:"recognitionLocale"`
	SynthesisLocales  []string `json:"synthesisLocales"`
}

var supported = map[string]Info{
	"en": {Code: "en", Name: "English", NativeName: "English", RecognitionLocale: "en-US", SynthesisLocales: []string{"en-US", "en-IN", "en-GB"}},
	"hi": {Code: "hi", Name: "Hindi", NativeName: "हिन्दी", RecognitionLocale: "hi-IN", SynthesisLocales: []string{"hi-IN", "hi", "en-IN", "en-US"}},
	"bn": {Code: "bn", Name: "Bengali", NativeName: "বাংলা", RecognitionLocale: "bn-IN", SynthesisLocales: []string{"bn-IN", "bn-BD", "hi-IN", "en-US"}},
	"ta": {Code: "ta", Name: "Tamil", NativeName: "தமிழ்", RecognitionLocale: "ta-IN", SynthesisLocales: []string{"ta-IN", "ta-LK", "hi-IN", "en-US"}},
	"te": {Code: "te", Name: "Telugu", NativeName: "తెలుగు", RecognitionLocale: "te-IN", SynthesisLocales: []string{"te-IN", "hi-IN", "en-US"}},
	"kn": {Code: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ", RecognitionLocale: "kn-IN", SynthesisLocales: []string{"kn-IN", "hi-IN", "en-US"}},
	"ml": {Code: "ml", Name: "Malayalam", NativeName: "മലയാളം", RecognitionLocale: "ml-IN", SynthesisLocales: []string{"ml-IN", "hi-IN", "en-US"}},
	"gu": {Code: "gu", Name: "Gujarati", NativeName: "ગુજરાતી", RecognitionLocale: "gu-IN", SynthesisLocales: []string{"gu-IN", "hi-IN", "en-US"}},
	"mr": {Code: "mr", Name: "Marathi", NativeName: "मराठी", RecognitionLocale: "mr-IN", SynthesisLocales: []string{"mr-IN", "hi-IN", "en-US"}},
	"pa": {Code: "pa", Name: "Punjabi", NativeName: "ਪੰਜਾਬੀ", RecognitionLocale: "pa-IN", SynthesisLocales: []string{"pa-IN", "pa-PK", "hi-IN", "en-US"}},
}

var matcher language.Matcher

func init() {
	tags := make([]language.Tag, 0, len(supported))
	tags = append(tags, language.English)
	for _, code := range Codes() {
		if code == Default {
			continue
		}
		tags = append(tags, language.MustParse(code))
	}
	matcher = language.NewMatcher(tags)
}

// Codes returns the supported language codes in a stable order.
func Codes() []string {
	codes := make([]string, 0, len(supported))
	for code := range supported {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// All returns every supported language ordered by code.
func All() []Info {
	out := make([]Info, 0, len(supported))
	for _, code := range Codes() {
		out = append(out, supported[code])
	}
	return out
}

// Lookup returns metadata for a supported code.
func Lookup(code string) (Info, bool) {
	info, ok := supported[code]
	return info, ok
}

// IsSupported reports whether code is one of the supported language codes.
func IsSupported(code string) bool {
	_, ok := supported[code]
	return ok
}

// Name returns the English name for code, or English for unknown codes.
func Name(code string) string {
	if info, ok := supported[code]; ok {
		return info.Name
	}
	return supported[Default].Name
}

// Normalize maps user input such as "HI", "hi-IN" or "pa_Guru_IN" onto a
// supported code. ok is false when nothing matches with reasonable confidence.
func Normalize(raw string) (string, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "_", "-"))
	if raw == "" {
		return "", false
	}
	if IsSupported(strings.ToLower(raw)) {
		return strings.ToLower(raw), true
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return "", false
	}
	return matchedCode(idx), true
}

func matchedCode(idx int) string {
	if idx == 0 {
		return Default
	}
	codes := make([]string, 0, len(supported)-1)
	for _, code := range Codes() {
		if code != Default {
			codes = append(codes, code)
		}
	}
	return codes[idx-1]
}

// scriptOrder is checked in sequence, so a text mixing scripts resolves to
// the first one listed. Marathi shares Devanagari with Hindi and cannot be
// told apart by script alone.
var scriptOrder = []struct {
	code  string
	table *unicode.RangeTable
}{
	{"hi", unicode.Devanagari},
	{"bn", unicode.Bengali},
	{"ta", unicode.Tamil},
	{"te", unicode.Telugu},
	{"kn", unicode.Kannada},
	{"ml", unicode.Malayalam},
	{"gu", unicode.Gujarati},
	{"pa", unicode.Gurmukhi},
}

// Detect guesses the language of text from the scripts it uses.
func Detect(text string) string {
	present := make(map[*unicode.RangeTable]bool, len(scriptOrder))
	for _, r := range text {
		if r < 0x0900 {
			continue
		}
		for _, s := range scriptOrder {
			if unicode.Is(s.table, r) {
				present[s.table] = true
				break
			}
		}
	}
	for _, s := range scriptOrder {
		if present[s.table] {
			return s.code
		}
	}
	return Default
}

// RecognitionLocale returns the speech recognition locale for code.
func RecognitionLocale(code string) string {
	if info, ok := supported[code]; ok {
		return info.RecognitionLocale
	}
	return supported[Default].RecognitionLocale
}

// SynthesisChain returns the ordered list of voice locales to try for code.
// The chain always contains en-US.
func SynthesisChain(code string) []string {
	info, ok := supported[code]
	if !ok {
		info = supported[Default]
	}
	chain := make([]string, len(info.SynthesisLocales))
	copy(chain, info.SynthesisLocales)
	if !slices.Contains(chain, "en-US") {
		chain = append(chain, "en-US")
	}
	return chain
}
