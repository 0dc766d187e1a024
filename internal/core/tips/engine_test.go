package tips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestExtract(t *testing.T) {
	reply := "Nice try! [FEEDBACK] Use \"am\" with I. [EXPLANATION] Subject and verb agree.\n" +
		"[PRONUNCIATION] think: tongue between teeth [VOCABULARY] thrilled = very excited\n" +
		"[FEEDBACK]Capitalize \"I\"."

	fb := New().Extract(reply)

	assert.Equal(t, []string{`Use "am" with I.`, `Capitalize "I".`}, fb.Grammar)
	assert.Equal(t, []string{"think: tongue between teeth"}, fb.Pronunciation)
	assert.Equal(t, []string{"thrilled = very excited"}, fb.Vocabulary)
	assert.Empty(t, fb.General)
}

func TestExtract_NoTags(t *testing.T) {
	fb := New().Extract("Hello! How was your day?")

	assert.NotNil(t, fb.Grammar)
	assert.Empty(t, fb.Grammar)
	assert.Empty(t, fb.Pronunciation)
	assert.Empty(t, fb.Vocabulary)
}

func TestExtract_TagAtEnd(t *testing.T) {
	fb := New().Extract("Good. [VOCABULARY]")

	assert.Equal(t, []string{""}, fb.Vocabulary)
}
