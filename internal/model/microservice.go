package model

import "strings"

// Language 源码语言标签
type Language string

const (
	LanguageJava       Language = "java"
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageCpp        Language = "cpp"
	LanguageC          Language = "c"
	LanguageCSharp     Language = "csharp"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageUnknown    Language = "unknown"
)

var languageAliases = map[string]Language{
	"java":       LanguageJava,
	"go":         LanguageGo,
	"golang":     LanguageGo,
	"python":     LanguagePython,
	"py":         LanguagePython,
	"cpp":        LanguageCpp,
	"c++":        LanguageCpp,
	"c":          LanguageC,
	"csharp":     LanguageCSharp,
	"c#":         LanguageCSharp,
	"javascript": LanguageJavaScript,
	"js":         LanguageJavaScript,
	"typescript": LanguageTypeScript,
	"ts":         LanguageTypeScript,
}

// ParseLanguage 不认识的语言统一为 unknown
func ParseLanguage(s string) Language {
	if l, ok := languageAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l
	}
	return LanguageUnknown
}

// Microservice 抽取阶段发现的一个服务
type Microservice struct {
	Name     string         `json:"name"`
	Language Language       `json:"language"`
	Entities []Entity       `json:"entities"`
	Calls    []OutboundCall `json:"calls,omitempty"`
}
