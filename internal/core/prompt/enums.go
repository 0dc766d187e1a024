package prompt

import "strings"

type Personality string

const (
	GrammarTutor        Personality = "grammar_tutor"
	PronunciationCoach  Personality = "pronunciation_coach"
	ConversationPartner Personality = "conversation_partner"
	VocabularyBuilder   Personality = "vocabulary_builder"
	FluencyCoach        Personality = "fluency_coach"
	Helpful             Personality = "helpful"
	Creative            Personality = "creative"
	Technical           Personality = "technical"
	Casual              Personality = "casual"
	Professional        Personality = "professional"
)

// AllPersonalities lists every personality in display order.
var AllPersonalities = []Personality{
	GrammarTutor, PronunciationCoach, ConversationPartner, VocabularyBuilder, FluencyCoach,
	Helpful, Creative, Technical, Casual, Professional,
}

// ParsePersonality maps a client-supplied key onto a Personality. Unknown
// keys resolve to ConversationPartner and report false.
func ParsePersonality(s string) (Personality, bool) {
	switch p := Personality(strings.TrimSpace(s)); p {
	case GrammarTutor, PronunciationCoach, ConversationPartner, VocabularyBuilder, FluencyCoach,
		Helpful, Creative, Technical, Casual, Professional:
		return p, true
	}
	return ConversationPartner, false
}

type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
	Native       Level = "native"
)

func ParseLevel(s string) (Level, bool) {
	switch l := Level(strings.TrimSpace(s)); l {
	case Beginner, Intermediate, Advanced, Native:
		return l, true
	}
	return Intermediate, false
}

type FeedbackStyle string

const (
	Gentle    FeedbackStyle = "gentle"
	Detailed  FeedbackStyle = "detailed"
	Immediate FeedbackStyle = "immediate"
	Summary   FeedbackStyle = "summary"
)

func ParseFeedbackStyle(s string) (FeedbackStyle, bool) {
	switch f := FeedbackStyle(strings.TrimSpace(s)); f {
	case Gentle, Detailed, Immediate, Summary:
		return f, true
	}
	return Gentle, false
}

// Mode is the learning focus chosen by the client.
type Mode string

const (
	ModeGrammar       Mode = "grammar"
	ModeVocabulary    Mode = "vocabulary"
	ModePronunciation Mode = "pronunciation"
	ModeFluency       Mode = "fluency"
	ModeConversation  Mode = "conversation"
	ModeScenario      Mode = "scenario"
)

func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.TrimSpace(s)); m {
	case ModeGrammar, ModeVocabulary, ModePronunciation, ModeFluency, ModeConversation, ModeScenario:
		return m, true
	}
	return ModeConversation, false
}
