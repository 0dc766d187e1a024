package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBuild_Layout(t *testing.T) {
	got := Build(GrammarTutor, Beginner, Detailed)

	require.True(t, strings.HasPrefix(got, "You are an expert English grammar tutor."))
	assert.Contains(t, got, "\n\nStudent Level: The student is a beginner.")
	assert.Contains(t, got, "\nFeedback Style: Give comprehensive analysis")
	assert.True(t, strings.HasSuffix(got, closing))
}

func TestBuildFromKeys_Defaults(t *testing.T) {
	got := BuildFromKeys("pirate", "expert", "harsh")
	want := Build(ConversationPartner, Intermediate, Gentle)
	assert.Equal(t, want, got)
}

func TestBuild_Deterministic(t *testing.T) {
	a := BuildFromKeys("fluency_coach", "native", "summary")
	b := BuildFromKeys("fluency_coach", "native", "summary")
	assert.Equal(t, a, b)
}

func TestParse(t *testing.T) {
	p, ok := ParsePersonality("vocabulary_builder")
	assert.True(t, ok)
	assert.Equal(t, VocabularyBuilder, p)

	p, ok = ParsePersonality("")
	assert.False(t, ok)
	assert.Equal(t, ConversationPartner, p)

	l, ok := ParseLevel("native")
	assert.True(t, ok)
	assert.Equal(t, Native, l)

	m, ok := ParseMode("scenario")
	assert.True(t, ok)
	assert.Equal(t, ModeScenario, m)

	m, ok = ParseMode("karaoke")
	assert.False(t, ok)
	assert.Equal(t, ModeConversation, m)
}

func TestEveryVariantHasDistinctClause(t *testing.T) {
	seen := map[string]bool{}
	for _, l := range []Level{Beginner, Intermediate, Advanced, Native} {
		seen[LevelContext(l)] = true
	}
	assert.Len(t, seen, 4)

	seen = map[string]bool{}
	for _, f := range []FeedbackStyle{Gentle, Detailed, Immediate, Summary} {
		seen[FeedbackContext(f)] = true
	}
	assert.Len(t, seen, 4)

	seen = map[string]bool{}
	for _, p := range AllPersonalities {
		seen[Template(p)] = true
	}
	assert.Len(t, seen, len(AllPersonalities))
}

func TestPersonalities(t *testing.T) {
	list := Personalities()
	require.Len(t, list, 10)
	assert.Equal(t, "grammar_tutor", list[0].ID)
	assert.Equal(t, "Grammar_tutor", list[0].Name)
	assert.Equal(t, Template(GrammarTutor), list[0].Description)
}
