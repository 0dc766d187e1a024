// Package tips pulls tagged learning feedback out of tutor replies.
package tips

import (
	"strings"

	"github.com/steveyiyo/tutor-relay/pkg/types"
)

const (
	TagFeedback      = "[FEEDBACK]"
	TagPronunciation = "[PRONUNCIATION]"
	TagVocabulary    = "[VOCABULARY]"
)

type Engine struct{}

func New() *Engine { return &Engine{} }

// Extract collects the text following each known tag up to the next '['
// or the end of the reply. General is never populated.
func (e *Engine) Extract(reply string) types.LearningFeedback {
	return types.LearningFeedback{
		Grammar:       segments(reply, TagFeedback),
		Pronunciation: segments(reply, TagPronunciation),
		Vocabulary:    segments(reply, TagVocabulary),
		General:       []string{},
	}
}

func segments(s, tag string) []string {
	out := []string{}
	for {
		i := strings.Index(s, tag)
		if i < 0 {
			return out
		}
		s = s[i+len(tag):]
		end := strings.IndexByte(s, '[')
		if end < 0 {
			end = len(s)
		}
		out = append(out, strings.TrimSpace(s[:end]))
		s = s[end:]
	}
}
