// Package analysis scores a transcribed utterance with cheap pattern rules:
// grammar flags, vocabulary bucket, pronunciation tips and a fluency score.
// The rules are heuristics; false positives are expected.
package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/steveyiyo/tutor-relay/internal/core/prompt"
	"github.com/steveyiyo/tutor-relay/pkg/types"
)

const degradedMessage = "Analysis temporarily unavailable"

// TextAnalyzer turns one utterance into a SpeechAnalysis. Implementations
// must not fail: internal problems are reported through the Error field.
type TextAnalyzer interface {
	Analyze(text string, level prompt.Level, mode prompt.Mode) types.SpeechAnalysis
}

type Heuristic struct {
	log     *zap.Logger
	grammar func(string) []types.GrammarIssue // CheckGrammar outside tests
}

func NewHeuristic(log *zap.Logger) *Heuristic {
	if log == nil {
		log = zap.NewNop()
	}
	return &Heuristic{log: log, grammar: CheckGrammar}
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

func (h *Heuristic) Analyze(text string, level prompt.Level, mode prompt.Mode) (a types.SpeechAnalysis) {
	a = types.SpeechAnalysis{
		OriginalText:          text,
		WordCount:             len(strings.Fields(text)),
		SentenceCount:         len(sentences(text)),
		GrammarIssues:         []types.GrammarIssue{},
		PronunciationConcerns: []types.PronunciationConcern{},
		Suggestions:           []string{},
	}

	defer func() {
		if r := recover(); r != nil {
			h.log.Error("speech analysis failed", zap.Error(fmt.Errorf("%v", r)))
			a.Error = degradedMessage
		}
	}()

	a.GrammarIssues = h.grammar(text)
	a.VocabularyLevel = string(VocabularyLevel(text))
	a.PronunciationConcerns = PronunciationConcerns(text)
	a.FluencyScore = FluencyScore(text)
	a.Suggestions = Suggestions(a, level, mode)
	return a
}

func sentences(text string) []string {
	var out []string
	for _, s := range sentenceSplit.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
