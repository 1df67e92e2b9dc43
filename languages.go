package medtravel

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is one entry of the site's language switcher.
type Language struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Flag    string `json:"flag"`
	RTL     bool   `json:"rtl"`
}

// Dir returns the HTML text direction for the language.
func (l Language) Dir() string {
	if l.RTL {
		return "rtl"
	}
	return "ltr"
}

// IsBase reports whether l is the base language.
func (l Language) IsBase() bool {
	return l.Code == BaseLanguage
}

// Languages is the reference list offered to visitors. The first entry is the
// base language and the fallback for unknown codes.
var Languages = []Language{
	{Code: "en", Name: "English", Country: "United Kingdom", Flag: "🇬🇧"},
	{Code: "ar", Name: "العربية", Country: "Saudi Arabia", Flag: "🇸🇦", RTL: true},
	{Code: "fr", Name: "Français", Country: "France", Flag: "🇫🇷"},
	{Code: "de", Name: "Deutsch", Country: "Germany", Flag: "🇩🇪"},
	{Code: "es", Name: "Español", Country: "Spain", Flag: "🇪🇸"},
	{Code: "ru", Name: "Русский", Country: "Russia", Flag: "🇷🇺"},
	{Code: "tr", Name: "Türkçe", Country: "Turkey", Flag: "🇹🇷"},
	{Code: "fa", Name: "فارسی", Country: "Iran", Flag: "🇮🇷", RTL: true},
	{Code: "ur", Name: "اردو", Country: "Pakistan", Flag: "🇵🇰", RTL: true},
	{Code: "he", Name: "עברית", Country: "Israel", Flag: "🇮🇱", RTL: true},
	{Code: "hi", Name: "हिन्दी", Country: "India", Flag: "🇮🇳"},
	{Code: "bn", Name: "বাংলা", Country: "Bangladesh", Flag: "🇧🇩"},
	{Code: "zh", Name: "中文", Country: "China", Flag: "🇨🇳"},
	{Code: "it", Name: "Italiano", Country: "Italy", Flag: "🇮🇹"},
	{Code: "pt", Name: "Português", Country: "Portugal", Flag: "🇵🇹"},
	{Code: "sw", Name: "Kiswahili", Country: "Kenya", Flag: "🇰🇪"},
}

var (
	languageIndex   = make(map[string]int, len(Languages))
	languageMatcher language.Matcher
)

func init() {
	tags := make([]language.Tag, len(Languages))
	for i, l := range Languages {
		languageIndex[l.Code] = i
		tags[i] = language.Make(l.Code)
	}
	languageMatcher = language.NewMatcher(tags)
}

// FindLanguage resolves a code such as "fr", "fr-CA" or "ar_SA" to a
// supported language. The second result is false when nothing matches.
func FindLanguage(code string) (Language, bool) {
	norm := strings.ToLower(strings.TrimSpace(code))
	if norm == "" {
		return Language{}, false
	}
	if i, ok := languageIndex[norm]; ok {
		return Languages[i], true
	}

	tag, err := language.Parse(ToHTMLLang(norm))
	if err != nil {
		return Language{}, false
	}
	base, _ := tag.Base()
	if i, ok := languageIndex[base.String()]; ok {
		return Languages[i], true
	}
	return Language{}, false
}

// LookupLanguage resolves code, falling back to the base language when the
// code is unknown or malformed.
func LookupLanguage(code string) Language {
	if l, ok := FindLanguage(code); ok {
		return l
	}
	return Languages[0]
}

// MatchAcceptLanguage picks the best supported language for an
// Accept-Language header value. Unparseable or unmatched headers yield the
// base language.
func MatchAcceptLanguage(header string) Language {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Languages[0]
	}
	_, idx, conf := languageMatcher.Match(tags...)
	if conf == language.No {
		return Languages[0]
	}
	return Languages[idx]
}

// IsBaseLanguage reports whether code resolves to the base language.
func IsBaseLanguage(code string) bool {
	return LookupLanguage(code).IsBase()
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(langCode string) string {
	return LookupLanguage(langCode).Dir()
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(langCode string) bool {
	return LookupLanguage(langCode).RTL
}

// NormalizeLocale converts a language code to the underscore form (e.g., "es-ES" → "es_ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}

// ToHTMLLang converts a locale code to HTML lang attribute format (e.g., "es_ES" → "es-ES").
func ToHTMLLang(langCode string) string {
	return strings.ReplaceAll(langCode, "_", "-")
}
