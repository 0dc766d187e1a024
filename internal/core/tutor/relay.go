// Package tutor turns one inbound chat message into one TutorResponse:
// validate, analyze, compose the prompt, complete, then record the turn.
package tutor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/steveyiyo/tutor-relay/internal/core/analysis"
	"github.com/steveyiyo/tutor-relay/internal/core/completion"
	"github.com/steveyiyo/tutor-relay/internal/core/prompt"
	"github.com/steveyiyo/tutor-relay/internal/core/session"
	"github.com/steveyiyo/tutor-relay/internal/core/tips"
	"github.com/steveyiyo/tutor-relay/internal/observe"
	"github.com/steveyiyo/tutor-relay/pkg/types"
)

const (
	DefaultModel           = "openai/gpt-3.5-turbo"
	DefaultMaxMessageLength = 1000

	invalidReply = "Please provide a valid message."
	apologyReply = "I apologize, but I encountered an error. Please try again."

	maxTokens   = 600
	temperature = 0.7
	logPreview  = 100
)

var (
	ErrInvalidMessage = errors.New("invalid message format")
	ErrMissingText    = errors.New("message text is required")
	ErrTooLong        = errors.New("message too long")
)

// Completer is satisfied by *completion.Client.
type Completer interface {
	Complete(ctx context.Context, req completion.Request, maxRetries int) completion.Result
}

// Journal persists interaction logs. Optional.
type Journal interface {
	Record(ctx context.Context, l types.InteractionLog) error
}

type Options struct {
	Analyzer         analysis.TextAnalyzer
	Completer        Completer
	Sessions         *session.Service
	Journal          Journal
	Logger           *zap.Logger
	Metrics          *observe.Metrics
	MaxMessageLength int
	MaxRetries       int
	// Verbose logs every interaction at info level.
	Verbose bool
}

type Relay struct {
	analyzer   analysis.TextAnalyzer
	completer  Completer
	feedback   *tips.Engine
	sessions   *session.Service
	journal    Journal
	log        *zap.Logger
	metrics    *observe.Metrics
	maxLen     int
	maxRetries int
	verbose    bool
	now        func() time.Time
}

func New(o Options) *Relay {
	r := &Relay{
		analyzer:   o.Analyzer,
		completer:  o.Completer,
		feedback:   tips.New(),
		sessions:   o.Sessions,
		journal:    o.Journal,
		log:        o.Logger,
		metrics:    o.Metrics,
		maxLen:     o.MaxMessageLength,
		maxRetries: o.MaxRetries,
		verbose:    o.Verbose,
		now:        time.Now,
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.analyzer == nil {
		r.analyzer = analysis.NewHeuristic(r.log)
	}
	if r.maxLen <= 0 {
		r.maxLen = DefaultMaxMessageLength
	}
	if r.maxRetries <= 0 {
		r.maxRetries = completion.DefaultMaxRetries
	}
	return r
}

// Handle processes one chat message from connID. It always returns a
// response; failures are reported with Error set.
func (r *Relay) Handle(ctx context.Context, connID string, raw json.RawMessage) (resp types.TutorResponse) {
	start := r.now()
	if r.sessions != nil {
		r.sessions.Touch(connID)
	}

	var msg types.ChatMessage
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic: %v", p)
			r.log.Error("chat message handler panicked", zap.String("conn", connID), zap.Error(err))
			resp = r.fail(ctx, connID, msg, apologyReply, err, start)
		}
	}()

	msg, err := decode(raw)
	if err == nil {
		err = r.validate(msg)
	}
	if err != nil {
		reply := invalidReply
		if errors.Is(err, ErrTooLong) {
			reply = r.tooLongReply()
		}
		r.log.Info("chat message rejected", zap.String("conn", connID), zap.Error(err))
		return r.fail(ctx, connID, msg, reply, err, start)
	}

	personality, _ := prompt.ParsePersonality(msg.Personality)
	level, _ := prompt.ParseLevel(msg.DifficultyLevel)
	style, _ := prompt.ParseFeedbackStyle(msg.FeedbackStyle)
	mode, _ := prompt.ParseMode(msg.LearningMode)

	r.log.Debug("user said",
		zap.String("conn", connID),
		zap.String("text", msg.Text),
		zap.String("mode", msg.LearningMode),
		zap.String("level", msg.DifficultyLevel))

	speech := r.analyzer.Analyze(msg.Text, level, mode)
	req, err := buildRequest(msg, prompt.Build(personality, level, style), speech)
	if err != nil {
		return r.fail(ctx, connID, msg, apologyReply, err, start)
	}

	res := r.completer.Complete(ctx, req, r.maxRetries)
	reply, ok := res.Reply()
	if !ok {
		return r.fail(ctx, connID, msg, apologyReply, errors.New("invalid completion response"), start)
	}

	elapsed := r.now().Sub(start)
	feedback := r.feedback.Extract(reply)
	resp = types.TutorResponse{
		Reply:            reply,
		SpeechAnalysis:   &speech,
		LearningFeedback: &feedback,
		Metadata: &types.ResponseMetadata{
			ProcessingTimeMs: elapsed.Milliseconds(),
			Model:            msg.Model,
			Personality:      msg.Personality,
			LearningMode:     msg.LearningMode,
			DifficultyLevel:  msg.DifficultyLevel,
			Source:           res.Kind.String(),
			Timestamp:        r.now().UTC().Format(time.RFC3339Nano),
		},
	}

	r.log.Debug("tutor reply",
		zap.String("conn", connID),
		zap.Duration("elapsed", elapsed),
		zap.Stringer("source", res.Kind),
		zap.String("reply", reply))

	if r.sessions != nil {
		r.sessions.RecordProgress(connID, speech, msg.LearningMode)
	}
	r.metrics.RecordMessage(ctx, res.Kind.String())
	r.metrics.RecordTurn(ctx, res.Kind.String(), elapsed)
	r.record(ctx, types.InteractionLog{
		ConnectionID:    connID,
		UserMessage:     truncate(msg.Text),
		TutorReply:      truncate(reply),
		LearningMode:    msg.LearningMode,
		DifficultyLevel: msg.DifficultyLevel,
		SpeechAnalysis: &types.AnalysisSummary{
			WordCount:          speech.WordCount,
			GrammarIssuesCount: len(speech.GrammarIssues),
			FluencyScore:       speech.FluencyScore,
			VocabularyLevel:    speech.VocabularyLevel,
		},
		ProcessingTimeMs: elapsed.Milliseconds(),
		Success:          true,
	})
	return resp
}

func (r *Relay) fail(ctx context.Context, connID string, msg types.ChatMessage, reply string, cause error, start time.Time) types.TutorResponse {
	elapsed := r.now().Sub(start)
	r.metrics.RecordMessage(ctx, "error")
	r.record(ctx, types.InteractionLog{
		ConnectionID:     connID,
		UserMessage:      truncate(msg.Text),
		TutorReply:       truncate(reply),
		LearningMode:     msg.LearningMode,
		ProcessingTimeMs: elapsed.Milliseconds(),
		Success:          false,
		ErrorDetails:     cause.Error(),
	})
	return types.TutorResponse{Reply: reply, Error: true}
}

func (r *Relay) record(ctx context.Context, l types.InteractionLog) {
	l.Timestamp = r.now().UTC().Format(time.RFC3339Nano)
	if r.verbose {
		r.log.Info("learning interaction", zap.Any("interaction", l))
	}
	if r.journal == nil {
		return
	}
	// the turn is complete; a closed socket must not drop the journal row
	if err := r.journal.Record(context.WithoutCancel(ctx), l); err != nil {
		r.log.Warn("journal write failed", zap.String("conn", l.ConnectionID), zap.Error(err))
	}
}

func (r *Relay) validate(msg types.ChatMessage) error {
	if msg.Text == "" {
		return ErrMissingText
	}
	if n := utf8.RuneCountInString(msg.Text); n > r.maxLen {
		return fmt.Errorf("%w: %d > %d characters", ErrTooLong, n, r.maxLen)
	}
	return nil
}

func (r *Relay) tooLongReply() string {
	return fmt.Sprintf("Message too long. Maximum %d characters allowed.", r.maxLen)
}

// decode accepts a bare JSON string or a ChatMessage object and fills in
// defaults for omitted fields.
func decode(raw json.RawMessage) (types.ChatMessage, error) {
	var msg types.ChatMessage
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return msg, ErrInvalidMessage
	}
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &msg.Text); err != nil {
			return msg, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
	case '{':
		if err := json.Unmarshal(raw, &msg); err != nil {
			return types.ChatMessage{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
	default:
		return msg, ErrInvalidMessage
	}
	withDefaults(&msg)
	return msg, nil
}

func withDefaults(m *types.ChatMessage) {
	if m.Model == "" {
		m.Model = DefaultModel
	}
	if m.Personality == "" {
		m.Personality = string(prompt.ConversationPartner)
	}
	if m.LearningMode == "" {
		m.LearningMode = string(prompt.ModeConversation)
	}
	if m.DifficultyLevel == "" {
		m.DifficultyLevel = string(prompt.Intermediate)
	}
	if m.FeedbackStyle == "" {
		m.FeedbackStyle = string(prompt.Gentle)
	}
}

func buildRequest(msg types.ChatMessage, system string, speech types.SpeechAnalysis) (completion.Request, error) {
	var sj bytes.Buffer
	enc := json.NewEncoder(&sj)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(speech); err != nil {
		return completion.Request{}, fmt.Errorf("tutor: encode analysis: %w", err)
	}
	return completion.Request{
		Model: msg.Model,
		Messages: []completion.Message{
			{Role: completion.RoleSystem, Content: system},
			{Role: completion.RoleUser, Content: fmt.Sprintf(
				"Student said: \"%s\"\n\nSpeech Analysis: %s\n\nPlease provide appropriate feedback and continue the conversation.",
				msg.Text, bytes.TrimRight(sj.Bytes(), "\n"))},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}, nil
}

// truncate keeps the first 100 characters and marks the cut.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= logPreview {
		return s
	}
	return string([]rune(s)[:logPreview]) + "..."
}
