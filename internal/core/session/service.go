// Package session tracks socket connections from connect to disconnect.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/steveyiyo/tutor-relay/internal/observe"
	"github.com/steveyiyo/tutor-relay/internal/repo/memory"
	"github.com/steveyiyo/tutor-relay/pkg/types"
)

type Service struct {
	Repo    *memory.ConnectionRepo
	log     *zap.Logger
	metrics *observe.Metrics
	now     func() time.Time
}

func NewService(repo *memory.ConnectionRepo, log *zap.Logger, m *observe.Metrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Repo: repo, log: log, metrics: m, now: time.Now}
}

// Summary describes a closed connection.
type Summary struct {
	ID       string
	Duration time.Duration
	Messages int64
}

func (s *Service) Open(ctx context.Context, remoteAddr, userAgent string) memory.Connection {
	now := s.now()
	c := memory.Connection{
		ID:           uuid.NewString(),
		RemoteAddr:   remoteAddr,
		UserAgent:    userAgent,
		ConnectedAt:  now,
		LastActivity: now,
	}
	s.Repo.Add(c)
	s.metrics.ConnectionOpened(ctx)
	s.log.Info("client connected",
		zap.String("conn", c.ID),
		zap.String("remote", remoteAddr),
		zap.Int64("active", s.Repo.Active()),
		zap.Int64("total", s.Repo.Total()))
	return c
}

// Touch counts an inbound chat message.
func (s *Service) Touch(id string) {
	s.Repo.Touch(id, s.now())
}

// RecordProgress derives a progress snapshot from a turn's analysis and
// stores it on the connection.
func (s *Service) RecordProgress(id string, a types.SpeechAnalysis, mode string) types.ProgressUpdate {
	p := types.ProgressUpdate{
		ConnectionID:    id,
		Timestamp:       s.now().UTC().Format(time.RFC3339Nano),
		LearningMode:    mode,
		GrammarScore:    GrammarScore(len(a.GrammarIssues)),
		FluencyScore:    a.FluencyScore,
		VocabularyLevel: a.VocabularyLevel,
		WordCount:       a.WordCount,
	}
	s.Repo.RecordProgress(id, p)
	s.log.Debug("progress update",
		zap.String("conn", id),
		zap.String("mode", mode),
		zap.Int("grammar", p.GrammarScore),
		zap.Int("fluency", p.FluencyScore),
		zap.String("vocabulary", p.VocabularyLevel),
		zap.Int("words", p.WordCount))
	return p
}

func (s *Service) Close(ctx context.Context, id, reason string) (Summary, bool) {
	c, ok := s.Repo.Remove(id)
	if !ok {
		return Summary{}, false
	}
	s.metrics.ConnectionClosed(ctx)
	sum := Summary{ID: id, Duration: s.now().Sub(c.ConnectedAt), Messages: c.MessageCount}
	s.log.Info("client disconnected",
		zap.String("conn", id),
		zap.String("reason", reason),
		zap.Duration("duration", sum.Duration.Round(time.Second)),
		zap.Int64("messages", sum.Messages))
	return sum, true
}

// GrammarScore is 100 with no issues, minus 20 per issue, floored at 0.
func GrammarScore(issues int) int {
	return max(0, 100-20*issues)
}
