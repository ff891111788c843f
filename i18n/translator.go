package i18n

import "strings"

// Translator retrieves localized messages for error codes and validator names.
// data provides optional parameters to embed in the message; placeholders are
// written as {name} (for example "{min}").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var messages = map[string]map[string]string{
	"en": {
		"unknown_property":      "unknown property",
		"invalid_mapper_format": "invalid mapper format",
		"mapper_not_found":      "mapper not found",
		"validation_failed":     "validation failed",
		"isRequired":            "is required",
		"length":                "length must be {length}",
		"minLength":             "length must be at least {min}",
		"maxLength":             "length must be at most {max}",
		"lengthRange":           "length must be between {min} and {max}",
		"matchesRegEx":          "must match {pattern}",
		"oneOf":                 "must be one of {items}",
		"equalTo":               "must be equal to {value}",
		"min":                   "must be at least {min}",
		"max":                   "must be at most {max}",
		"range":                 "must be between {min} and {max}",
		"expr":                  "must satisfy {expr}",
		"type":                  "cannot be assigned: {cause}",
		"nested":                "expected an object",
		"transform":             "transform failed: {cause}",
		"consumer":              "consumer failed: {cause}",
	},
	"ja": {
		"unknown_property":      "未知のプロパティです",
		"invalid_mapper_format": "マッピング定義が不正です",
		"mapper_not_found":      "マッピングが見つかりません",
		"validation_failed":     "検証に失敗しました",
		"isRequired":            "必須です",
		"length":                "長さは{length}である必要があります",
		"minLength":             "長さは{min}以上である必要があります",
		"maxLength":             "長さは{max}以下である必要があります",
		"lengthRange":           "長さは{min}から{max}の間である必要があります",
		"matchesRegEx":          "{pattern}に一致する必要があります",
		"oneOf":                 "{items}のいずれかである必要があります",
		"equalTo":               "{value}と等しい必要があります",
		"min":                   "{min}以上である必要があります",
		"max":                   "{max}以下である必要があります",
		"range":                 "{min}から{max}の間である必要があります",
		"expr":                  "{expr}を満たす必要があります",
		"type":                  "代入できません: {cause}",
		"nested":                "オブジェクトが必要です",
		"transform":             "変換に失敗しました: {cause}",
		"consumer":              "値の取り込みに失敗しました: {cause}",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := messages[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
