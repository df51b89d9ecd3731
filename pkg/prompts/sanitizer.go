package prompts

import (
	"log/slog"
	"regexp"
	"strings"
)

// sanitizeRule は 1 つの置換ルールです。
type sanitizeRule struct {
	category    string
	pattern     *regexp.Regexp
	replacement string
}

// removalRule は語そのものを削除するルールで、他のルールより先に適用されます。
// 削除によって隣り合った語が新しい一致を作るため、一致がなくなるまで繰り返します。
// 削除のたびに文字列は短くなるので、繰り返しは必ず終わります。
var removalRule = sanitizeRule{
	category:    "hate",
	pattern:     regexp.MustCompile(`(?i)\b(?:swastikas?|nazi\s+symbols?|confederate\s+flags?|kkk)\b`),
	replacement: "",
}

// sanitizeRules は removalRule の後に上から順に 1 回だけ適用されます。
// 置換後の語がどのルールにもマッチせず、空白の正規化で新しい一致が生まれないことで、
// Sanitize の冪等性が保たれます。
var sanitizeRules = []sanitizeRule{
	// violence
	{"violence", regexp.MustCompile(`(?i)\b(?:dead\s+bod(?:y|ies)|corpses?|cadavers?)\b`), "fallen figure"},
	{"violence", regexp.MustCompile(`(?i)\b(?:murder(?:s|ed|ing|er|ers)?|kill(?:s|ed|ing|er|ers)?|slaughter(?:s|ed|ing)?|massacre(?:s|d)?)\b`), "defeated"},
	{"violence", regexp.MustCompile(`(?i)\b(?:blood(?:y|ied)?|gore|gory)\b`), "crimson"},
	{"violence", regexp.MustCompile(`(?i)\b(?:stab(?:s|bed|bing)?|wound(?:s|ed)?|maim(?:s|ed|ing)?|mutilat(?:e|es|ed|ing|ion))\b`), "injured"},
	{"violence", regexp.MustCompile(`(?i)\b(?:decapitat(?:e|es|ed|ing|ion)|behead(?:s|ed|ing)?|dismember(?:s|ed|ing|ment)?)\b`), "defeated"},
	// suggestive
	{"suggestive", regexp.MustCompile(`(?i)\b(?:naked|nude|topless|undressed)\b`), "fully clothed"},
	{"suggestive", regexp.MustCompile(`(?i)\b(?:sexy|seductive(?:ly)?|sensual(?:ly)?|erotic|provocative(?:ly)?)\b`), "elegant"},
	{"suggestive", regexp.MustCompile(`(?i)\b(?:lingerie|underwear)\b`), "sleepwear"},
	// self-harm
	{"self-harm", regexp.MustCompile(`(?i)\b(?:suicid(?:e|al)|self(?:-|\s+)harm(?:ing)?|cutting\s+(?:herself|himself|themselves))\b`), "in distress"},
	{"self-harm", regexp.MustCompile(`(?i)\b(?:overdos(?:e|es|ed|ing)|hanging\s+(?:herself|himself|themselves))\b`), "struggling"},
	// drugs
	{"drugs", regexp.MustCompile(`(?i)\b(?:cocaine|heroin|meth(?:amphetamine)?|drugs|narcotics?)\b`), "substance"},
}

var (
	horizontalSpaceRegex = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforePunct     = regexp.MustCompile(`[ \t]+([,.;:!?])`)
)

// Replacement はサニタイズで置換された 1 箇所の記録です。
type Replacement struct {
	Category string
	Original string
	Replaced string
}

// Sanitize はコンテンツポリシーに抵触しやすい語を中立的な表現に置き換えます。
// 同じ入力には常に同じ出力を返し、Sanitize(Sanitize(x)) == Sanitize(x) が成り立ちます。
func Sanitize(text string) string {
	out, _ := SanitizeWithReport(text)
	return out
}

// SanitizeWithReport は Sanitize と同じ変換を行い、置換された箇所の一覧も返します。
func SanitizeWithReport(text string) (string, []Replacement) {
	var report []Replacement
	out := text

	for {
		before := len(report)
		out = applyRule(removalRule, out, &report)
		if len(report) == before {
			break
		}
		out = normalizeSpaces(out)
	}

	for _, rule := range sanitizeRules {
		out = applyRule(rule, out, &report)
	}

	if len(report) == 0 {
		return text, nil
	}
	out = normalizeSpaces(out)

	originals := make([]string, len(report))
	for i, r := range report {
		originals[i] = r.Original
	}
	slog.Debug("プロンプトをサニタイズしました", "replaced", originals, "count", len(report))

	return out, report
}

func applyRule(rule sanitizeRule, text string, report *[]Replacement) string {
	return rule.pattern.ReplaceAllStringFunc(text, func(match string) string {
		*report = append(*report, Replacement{
			Category: rule.category,
			Original: match,
			Replaced: rule.replacement,
		})
		return rule.replacement
	})
}

func normalizeSpaces(text string) string {
	text = horizontalSpaceRegex.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
