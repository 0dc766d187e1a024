package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/steveyiyo/tutor-relay/internal/core/prompt"
	"github.com/steveyiyo/tutor-relay/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func issueTypes(issues []types.GrammarIssue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Type)
	}
	return out
}

func TestAnalyze_Greeting(t *testing.T) {
	a := NewHeuristic(nil).Analyze("hello how are you", prompt.Intermediate, prompt.ModeConversation)

	assert.Equal(t, "hello how are you", a.OriginalText)
	assert.Equal(t, 4, a.WordCount)
	assert.Equal(t, 1, a.SentenceCount)
	assert.Empty(t, a.GrammarIssues)
	assert.NotNil(t, a.GrammarIssues)
	assert.NotNil(t, a.PronunciationConcerns)
	assert.Equal(t, "beginner", a.VocabularyLevel)
	assert.Equal(t, 40, a.FluencyScore)
	assert.Equal(t, []string{"Try to elaborate more on your thoughts - give examples or details"}, a.Suggestions)
	assert.Empty(t, a.Error)
}

func TestCheckGrammar(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"agreement and lowercase i", "i are happy today and i are excited", []string{IssueCapitalization, IssueSubjectVerbAgreement}},
		{"double negative", "I don't know nothing", []string{IssueDoubleNegative}},
		{"clean sentence", "I am happy today.", []string{}},
		{"she are", "Today she are late.", []string{IssueSubjectVerbAgreement}},
		{"per sentence", "Yes i can. Then i will!", []string{IssueCapitalization, IssueCapitalization}},
		{"capital I is fine", "Then I went home", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, issueTypes(CheckGrammar(tt.text)))
		})
	}
}

func TestCheckGrammar_Severity(t *testing.T) {
	issues := CheckGrammar("i are happy today and i are excited")
	require.Len(t, issues, 2)
	assert.Equal(t, SeverityMinor, issues[0].Severity)
	assert.Equal(t, SeverityMajor, issues[1].Severity)
}

func TestCheckGrammar_Idempotent(t *testing.T) {
	texts := []string{
		"i are happy today and i are excited",
		"Nobody never said nothing. he are here!",
		"",
		"Plain words only",
	}
	for _, text := range texts {
		assert.Equal(t, CheckGrammar(text), CheckGrammar(text), text)
	}
}

func TestVocabularyLevel(t *testing.T) {
	assert.Equal(t, VocabAdvanced, VocabularyLevel("notwithstanding the rules"))
	assert.Equal(t, VocabIntermediate, VocabularyLevel("however I think so today and tomorrow too friend ok"))
	assert.Equal(t, VocabBeginner, VocabularyLevel("the cat sat on the mat"))
	assert.Equal(t, VocabBeginner, VocabularyLevel(""))
}

func TestVocabularyLevel_Monotonic(t *testing.T) {
	rank := map[Vocabulary]int{VocabBeginner: 0, VocabIntermediate: 1, VocabAdvanced: 2}
	base := strings.Fields("however we walked to the shop and bought some bread for dinner tonight")
	prev := rank[VocabularyLevel(strings.Join(base, " "))]
	words := base
	for i := 0; i < 5; i++ {
		words = append(words, "subsequently")
		cur := rank[VocabularyLevel(strings.Join(words, " "))]
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	assert.Equal(t, rank[VocabAdvanced], prev)
}

func TestPronunciationConcerns(t *testing.T) {
	got := PronunciationConcerns("I thought, through three worlds!")
	require.Len(t, got, 3)
	assert.Equal(t, "thought", got[0].Word)
	assert.Equal(t, "through", got[1].Word)
	assert.Equal(t, "three", got[2].Word)
	assert.Equal(t, "pronunciation", got[2].Type)
}

func TestFluencyScore(t *testing.T) {
	long := "I went to the park because the weather was lovely and I wanted to walk my dog around the lake for an hour today"
	assert.Equal(t, 95, FluencyScore(long))
	assert.Equal(t, 40, FluencyScore("no no no no no no"))
	assert.Equal(t, 30, FluencyScore(""))
}

func TestFluencyScore_Bounded(t *testing.T) {
	inputs := []string{
		"",
		"a",
		strings.Repeat("word ", 200),
		strings.Repeat("although because since while whereas however therefore ", 10),
		"I don't know nothing",
		"Wow!!! ??? ...",
	}
	h := NewHeuristic(nil)
	for _, in := range inputs {
		score := h.Analyze(in, prompt.Beginner, prompt.ModeFluency).FluencyScore
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
}

func TestSuggestions(t *testing.T) {
	h := NewHeuristic(nil)

	a := h.Analyze("i are fine", prompt.Intermediate, prompt.ModeGrammar)
	assert.Contains(t, a.Suggestions, "Focus on the grammar corrections provided above")

	a = h.Analyze("the cat sat", prompt.Intermediate, prompt.ModeVocabulary)
	assert.Contains(t, a.Suggestions, "Try using more complex vocabulary and linking words")

	a = h.Analyze("short one", prompt.Intermediate, prompt.ModeFluency)
	assert.Contains(t, a.Suggestions, "Try speaking in longer sentences and using connecting words")

	a = h.Analyze("the cat sat", prompt.Advanced, prompt.ModeVocabulary)
	assert.NotContains(t, a.Suggestions, "Try using more complex vocabulary and linking words")
}

func TestAnalyze_RulePanicDegrades(t *testing.T) {
	h := NewHeuristic(nil)
	h.grammar = func(string) []types.GrammarIssue { panic("rule table corrupted") }

	var a types.SpeechAnalysis
	require.NotPanics(t, func() {
		a = h.Analyze("i are happy", prompt.Intermediate, prompt.ModeConversation)
	})

	assert.Equal(t, "Analysis temporarily unavailable", a.Error)
	assert.Equal(t, "i are happy", a.OriginalText)
	assert.Equal(t, 3, a.WordCount)
	assert.Equal(t, 1, a.SentenceCount)
	assert.NotNil(t, a.GrammarIssues)
	assert.NotNil(t, a.PronunciationConcerns)
	assert.NotNil(t, a.Suggestions)
	assert.GreaterOrEqual(t, a.FluencyScore, 0)
	assert.LessOrEqual(t, a.FluencyScore, 100)
}
