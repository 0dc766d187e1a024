package analysis

import (
	"regexp"
	"strings"

	"github.com/steveyiyo/tutor-relay/internal/core/prompt"
	"github.com/steveyiyo/tutor-relay/pkg/types"
)

const (
	SeverityMinor = "minor"
	SeverityMajor = "major"

	IssueCapitalization       = "capitalization"
	IssueSubjectVerbAgreement = "subject_verb_agreement"
	IssueDoubleNegative       = "double_negative"
)

var (
	disagreements = []string{" i are ", " he are ", " she are "}
	negatives     = []string{"not", "no", "never", "nothing", "nobody", "nowhere"}

	intermediateWords = wordSet("although", "however", "therefore", "furthermore", "nevertheless",
		"consequently", "specifically", "particularly", "especially")
	advancedWords = wordSet("notwithstanding", "subsequently", "predominantly", "substantially",
		"comprehensively", "systematically")

	connectives = []string{"although", "because", "since", "while", "whereas", "however", "therefore"}

	difficultWords = map[string]string{
		"through":     `pronounced as "throo", not "throw"`,
		"thought":     `pronounced as "thawt", with the "th" sound`,
		"three":       `practice the "th" sound at the beginning`,
		"world":       `pronounced as "wurld", not "word"`,
		"work":        `pronounced as "wurk", with a clear "r" sound`,
		"comfortable": `pronounced as "KUHM-fər-tə-bəl", four syllables`,
	}

	nonWord = regexp.MustCompile(`[^\w]`)
)

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// CheckGrammar applies the three independent rules to every sentence. Each
// rule reports at most once per sentence.
func CheckGrammar(text string) []types.GrammarIssue {
	issues := []types.GrammarIssue{}
	for _, s := range sentences(text) {
		if hasLowercaseI(s) {
			issues = append(issues, types.GrammarIssue{
				Type:       IssueCapitalization,
				Issue:      `The pronoun "I" should always be capitalized`,
				Suggestion: `Remember to capitalize "I" when referring to yourself`,
				Severity:   SeverityMinor,
			})
		}

		lower := " " + strings.ToLower(s) + " "
		for _, d := range disagreements {
			if strings.Contains(lower, d) {
				issues = append(issues, types.GrammarIssue{
					Type:       IssueSubjectVerbAgreement,
					Issue:      "Subject-verb disagreement detected",
					Suggestion: `Use "am" with "I", "is" with "he/she/it", "are" with "you/we/they"`,
					Severity:   SeverityMajor,
				})
				break
			}
		}

		n := 0
		for _, neg := range negatives {
			n += strings.Count(lower, neg)
		}
		if n > 1 {
			issues = append(issues, types.GrammarIssue{
				Type:       IssueDoubleNegative,
				Issue:      "Avoid using double negatives in English",
				Suggestion: "Use only one negative word per clause",
				Severity:   SeverityMajor,
			})
		}
	}
	return issues
}

// hasLowercaseI reports a standalone lowercase "i" anywhere after the first
// word of the sentence.
func hasLowercaseI(sentence string) bool {
	words := strings.Fields(sentence)
	for i := 1; i < len(words); i++ {
		if words[i] == "i" {
			return true
		}
	}
	return false
}

type Vocabulary string

const (
	VocabBeginner     Vocabulary = "beginner"
	VocabIntermediate Vocabulary = "intermediate"
	VocabAdvanced     Vocabulary = "advanced"
)

// VocabularyLevel buckets text by the share of listed words. Advanced wins
// over intermediate.
func VocabularyLevel(text string) Vocabulary {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return VocabBeginner
	}
	var intermediate, advanced int
	for _, w := range words {
		if _, ok := intermediateWords[w]; ok {
			intermediate++
		}
		if _, ok := advancedWords[w]; ok {
			advanced++
		}
	}
	total := float64(len(words))
	switch {
	case float64(advanced)/total > 0.1:
		return VocabAdvanced
	case float64(intermediate)/total > 0.05:
		return VocabIntermediate
	default:
		return VocabBeginner
	}
}

func PronunciationConcerns(text string) []types.PronunciationConcern {
	out := []types.PronunciationConcern{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		clean := nonWord.ReplaceAllString(w, "")
		if tip, ok := difficultWords[clean]; ok {
			out = append(out, types.PronunciationConcern{Word: clean, Tip: tip, Type: "pronunciation"})
		}
	}
	return out
}

func FluencyScore(text string) int {
	words := strings.Fields(strings.ToLower(text))
	score := 50

	switch n := len(words); {
	case n > 20:
		score += 20
	case n > 10:
		score += 10
	case n < 5:
		score -= 20
	}

	lower := strings.ToLower(text)
	for _, c := range connectives {
		if strings.Contains(lower, c) {
			score += 15
			break
		}
	}

	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		variety := float64(len(unique)) / float64(len(words))
		switch {
		case variety > 0.8:
			score += 10
		case variety < 0.6:
			score -= 10
		}
	}

	return min(100, max(0, score))
}

func Suggestions(a types.SpeechAnalysis, level prompt.Level, mode prompt.Mode) []string {
	out := []string{}
	if mode == prompt.ModeGrammar && len(a.GrammarIssues) > 0 {
		out = append(out, "Focus on the grammar corrections provided above")
	}
	if mode == prompt.ModeVocabulary && a.VocabularyLevel == string(VocabBeginner) && level == prompt.Intermediate {
		out = append(out, "Try using more complex vocabulary and linking words")
	}
	if mode == prompt.ModeFluency && a.FluencyScore < 70 {
		out = append(out, "Try speaking in longer sentences and using connecting words")
	}
	if a.WordCount < 10 {
		out = append(out, "Try to elaborate more on your thoughts - give examples or details")
	}
	return out
}
