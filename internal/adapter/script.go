package adapter

// defaultScripts maps a language code to the ISO 15924 script it is
// written in unless stated otherwise.
var defaultScripts = map[string]string{
	"as":  "Beng",
	"bn":  "Beng",
	"brx": "Deva",
	"doi": "Deva",
	"en":  "Latn",
	"gu":  "Gujr",
	"hi":  "Deva",
	"kn":  "Knda",
	"kok": "Deva",
	"ks":  "Arab",
	"mai": "Deva",
	"ml":  "Mlym",
	"mni": "Mtei",
	"mr":  "Deva",
	"ne":  "Deva",
	"or":  "Orya",
	"pa":  "Guru",
	"sa":  "Deva",
	"sat": "Olck",
	"sd":  "Arab",
	"ta":  "Taml",
	"te":  "Telu",
	"ur":  "Arab",
}

// DefaultScript returns the default script of lang.
func DefaultScript(lang string) (string, bool) {
	s, ok := defaultScripts[lang]
	return s, ok
}

// LanguageID returns the backend language id for lang written in script.
// A known language in a non-default script gets a _<script> suffix, e.g.
// ks_Deva; otherwise the bare language code is used.
func LanguageID(lang, script string) string {
	def, ok := DefaultScript(lang)
	if script == "" || !ok || script == def {
		return lang
	}
	return lang + "_" + script
}
