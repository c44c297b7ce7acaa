package fonts

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrUnknownWritingSystem is returned for a writing system name that is not
// in [WritingSystems].
var ErrUnknownWritingSystem = errors.New("unknown writing system")

// WritingSystem is a group of languages that share a script, as used to
// group fonts.
type WritingSystem struct {
	// Tag is the representative language, used to query font coverage.
	Tag    language.Tag
	Name   string
	Sample string
}

// WritingSystems lists the supported writing systems, sorted by name.
var WritingSystems = []WritingSystem{
	{Name: "Arabic", Tag: language.Arabic, Sample: "أبجد هوز"},
	{Name: "Armenian", Tag: language.Armenian, Sample: "Աբգդ"},
	{Name: "Bengali", Tag: language.Bengali, Sample: "অআইঈ"},
	{Name: "Cyrillic", Tag: language.Russian, Sample: "Бблж"},
	{Name: "Devanagari", Tag: language.Hindi, Sample: "अआइई"},
	{Name: "Georgian", Tag: language.Georgian, Sample: "Აა Ბბ"},
	{Name: "Greek", Tag: language.Greek, Sample: "Αα Ββ"},
	{Name: "Gujarati", Tag: language.Gujarati, Sample: "અઆઇઈ"},
	{Name: "Gurmukhi", Tag: language.Punjabi, Sample: "ਅਆਇਈ"},
	{Name: "Hebrew", Tag: language.Hebrew, Sample: "אבגד"},
	{Name: "Japanese", Tag: language.Japanese, Sample: "日本語"},
	{Name: "Kannada", Tag: language.Kannada, Sample: "ಅಆಇಈ"},
	{Name: "Khmer", Tag: language.Khmer, Sample: "កខគឃ"},
	{Name: "Korean", Tag: language.Korean, Sample: "한국어"},
	{Name: "Lao", Tag: language.Lao, Sample: "ກຂຄງ"},
	{Name: "Latin", Tag: language.English, Sample: "Aa Bb Cc"},
	{Name: "Malayalam", Tag: language.Malayalam, Sample: "അആഇഈ"},
	{Name: "Myanmar", Tag: language.Burmese, Sample: "ကခဂဃ"},
	{Name: "N'Ko", Tag: language.MustParse("nqo"), Sample: "ߊߋߌߍ"},
	{Name: "Oriya", Tag: language.MustParse("or"), Sample: "ଅଆଇଈ"},
	{Name: "Simplified Chinese", Tag: language.MustParse("zh-CN"), Sample: "中文范例"},
	{Name: "Sinhala", Tag: language.Sinhala, Sample: "අආඇඈ"},
	{Name: "Syriac", Tag: language.MustParse("syr"), Sample: "ܐܒܓܕ"},
	{Name: "Tamil", Tag: language.Tamil, Sample: "அஆஇஈ"},
	{Name: "Telugu", Tag: language.Telugu, Sample: "అఆఇఈ"},
	{Name: "Thaana", Tag: language.MustParse("dv"), Sample: "ހށނރ"},
	{Name: "Thai", Tag: language.Thai, Sample: "กขฃค"},
	{Name: "Tibetan", Tag: language.MustParse("bo"), Sample: "ཀཁགང"},
	{Name: "Traditional Chinese", Tag: language.MustParse("zh-TW"), Sample: "中文範例"},
	{Name: "Vietnamese", Tag: language.Vietnamese, Sample: "Tiếng Việt"},
}

// Lookup returns the writing system with the given name.
func Lookup(name string) (WritingSystem, error) {
	i := slices.IndexFunc(WritingSystems, func(ws WritingSystem) bool {
		return ws.Name == name
	})
	if i < 0 {
		return WritingSystem{}, fmt.Errorf("%w: %q", ErrUnknownWritingSystem, name)
	}

	return WritingSystems[i], nil
}

// Names returns the names of all [WritingSystems], sorted.
func Names() []string {
	names := make([]string, 0, len(WritingSystems))
	for _, ws := range WritingSystems {
		names = append(names, ws.Name)
	}

	return names
}

// Token returns name with every character that is not a letter or digit
// removed, e.g. "SimplifiedChinese".
func Token(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return -1
	}, name)
}

// Token returns the writing system's [Token].
func (ws WritingSystem) Token() string {
	return Token(ws.Name)
}

// Lang returns the fontconfig language for the writing system, e.g. "zh-cn".
func (ws WritingSystem) Lang() string {
	return strings.ToLower(ws.Tag.String())
}

// Language returns the English display name of the representative language.
func (ws WritingSystem) Language() string {
	return display.English.Tags().Name(ws.Tag)
}
