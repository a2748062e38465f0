package languages

import (
	"fmt"
	mapset "github.com/deckarep/golang-set"
	"golang.org/x/text/language"
	"strings"
)

/**
the catalog is a closed set: a transcode spec referencing a code that is not
listed here is rejected before any encode work starts.
*/
type Language struct {
	Code        string `json:"code"`        //canonical BCP-47 tag, e.g. "en-US"
	DisplayName string `json:"displayName"` //label applied to manifest tracks, e.g. "English (US)"
}

type UnknownLanguageError struct {
	Code string
}

func (e UnknownLanguageError) Error() string {
	return fmt.Sprintf("language code '%s' is not in the catalog", e.Code)
}

var catalogEntries = []Language{
	{"en-US", "English (US)"},
	{"en-GB", "English (UK)"},
	{"de-DE", "German"},
	{"fr-FR", "French"},
	{"es-ES", "Spanish"},
	{"es-419", "Spanish (Latin America)"},
	{"it-IT", "Italian"},
	{"pt-BR", "Portuguese (Brazil)"},
	{"nl-NL", "Dutch"},
	{"sv-SE", "Swedish"},
	{"pl-PL", "Polish"},
	{"tr-TR", "Turkish"},
	{"ru-RU", "Russian"},
	{"ja-JP", "Japanese"},
	{"ko-KR", "Korean"},
	{"zh-CN", "Chinese (Simplified)"},
	{"hi-IN", "Hindi"},
	{"ar-SA", "Arabic"},
}

var catalogIndex map[string]Language
var validCodes mapset.Set

func init() {
	catalogIndex = make(map[string]Language, len(catalogEntries))
	validCodes = mapset.NewSet()
	for _, entry := range catalogEntries {
		catalogIndex[entry.Code] = entry
		validCodes.Add(entry.Code)
	}
}

/**
parse the incoming code as a BCP-47 tag and return its canonical form.
underscore separators (EN_US style) are tolerated.
*/
func NormalizeCode(code string) (string, error) {
	tag, parseErr := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if parseErr != nil {
		return "", parseErr
	}
	return tag.String(), nil
}

func Lookup(code string) (Language, error) {
	canonical, normErr := NormalizeCode(code)
	if normErr != nil {
		return Language{}, UnknownLanguageError{Code: code}
	}
	if !validCodes.Contains(canonical) {
		return Language{}, UnknownLanguageError{Code: code}
	}
	return catalogIndex[canonical], nil
}

func IsValid(code string) bool {
	_, err := Lookup(code)
	return err == nil
}

func All() []Language {
	rtn := make([]Language, len(catalogEntries))
	copy(rtn, catalogEntries)
	return rtn
}
