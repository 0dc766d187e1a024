package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/steveyiyo/tutor-relay/internal/repo/memory"
	"github.com/steveyiyo/tutor-relay/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestService_Lifecycle(t *testing.T) {
	repo := memory.NewConnectionRepo()
	svc := NewService(repo, nil, nil)
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	ctx := context.Background()

	c := svc.Open(ctx, "127.0.0.1", "test-agent")
	require.NotEmpty(t, c.ID)
	assert.EqualValues(t, 1, repo.Active())

	clock = clock.Add(30 * time.Second)
	svc.Touch(c.ID)
	svc.Touch(c.ID)

	clock = clock.Add(30 * time.Second)
	sum, ok := svc.Close(ctx, c.ID, "client gone")
	require.True(t, ok)
	assert.Equal(t, time.Minute, sum.Duration)
	assert.EqualValues(t, 2, sum.Messages)
	assert.EqualValues(t, 0, repo.Active())

	_, ok = svc.Close(ctx, c.ID, "again")
	assert.False(t, ok)
}

func TestService_RecordProgress(t *testing.T) {
	repo := memory.NewConnectionRepo()
	svc := NewService(repo, nil, nil)
	c := svc.Open(context.Background(), "", "")

	a := types.SpeechAnalysis{
		WordCount:       8,
		FluencyScore:    55,
		VocabularyLevel: "beginner",
		GrammarIssues:   make([]types.GrammarIssue, 2),
	}
	p := svc.RecordProgress(c.ID, a, "grammar")

	assert.Equal(t, 60, p.GrammarScore)
	assert.Equal(t, 55, p.FluencyScore)
	assert.Equal(t, "grammar", p.LearningMode)

	stored, _ := repo.Get(c.ID)
	require.NotNil(t, stored.LastProgress)
	assert.Equal(t, p, *stored.LastProgress)
}

func TestGrammarScore(t *testing.T) {
	assert.Equal(t, 100, GrammarScore(0))
	assert.Equal(t, 80, GrammarScore(1))
	assert.Equal(t, 0, GrammarScore(5))
	assert.Equal(t, 0, GrammarScore(9))
}
