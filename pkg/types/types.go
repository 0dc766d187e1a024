package types

import "encoding/json"

// Socket event names.
const (
	EventConnectionConfirmed = "connection-confirmed"
	EventChatMessage         = "chat message"
	EventTutorResponse       = "tutor response"
	EventPing                = "ping"
	EventPong                = "pong"
)

// Envelope frames every socket message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type ChatMessage struct {
	Text            string `json:"text"`
	Model           string `json:"model,omitempty"`
	Personality     string `json:"personality,omitempty"`
	LearningMode    string `json:"learningMode,omitempty"`
	DifficultyLevel string `json:"difficultyLevel,omitempty"`
	FeedbackStyle   string `json:"feedbackStyle,omitempty"`
}

type GrammarIssue struct {
	Type       string `json:"type"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
	Severity   string `json:"severity"`
}

type PronunciationConcern struct {
	Word string `json:"word"`
	Tip  string `json:"tip"`
	Type string `json:"type"`
}

type SpeechAnalysis struct {
	OriginalText          string                 `json:"originalText"`
	WordCount             int                    `json:"wordCount"`
	SentenceCount         int                    `json:"sentenceCount"`
	GrammarIssues         []GrammarIssue         `json:"grammarIssues"`
	VocabularyLevel       string                 `json:"vocabularyLevel"`
	PronunciationConcerns []PronunciationConcern `json:"pronunciationConcerns"`
	FluencyScore          int                    `json:"fluencyScore"`
	Suggestions           []string               `json:"suggestions"`
	Error                 string                 `json:"error,omitempty"`
}

type LearningFeedback struct {
	Grammar       []string `json:"grammar"`
	Pronunciation []string `json:"pronunciation"`
	Vocabulary    []string `json:"vocabulary"`
	General       []string `json:"general"`
}

type ResponseMetadata struct {
	ProcessingTimeMs int64  `json:"processingTime"`
	Model            string `json:"model"`
	Personality      string `json:"personality"`
	LearningMode     string `json:"learningMode"`
	DifficultyLevel  string `json:"difficultyLevel"`
	Source           string `json:"source"`
	Timestamp        string `json:"timestamp"`
}

// TutorResponse is emitted once per inbound chat message. On validation
// failure only Reply and Error are meaningful.
type TutorResponse struct {
	Reply            string            `json:"reply"`
	SpeechAnalysis   *SpeechAnalysis   `json:"speechAnalysis"`
	LearningFeedback *LearningFeedback `json:"learningFeedback"`
	Metadata         *ResponseMetadata `json:"metadata,omitempty"`
	Error            bool              `json:"error,omitempty"`
}

type ConnectionConfirmed struct {
	ID         string   `json:"id"`
	ServerTime string   `json:"serverTime"`
	Features   []string `json:"features"`
}

type Pong struct {
	Timestamp int64 `json:"timestamp"`
}

type ModelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

type PersonalityInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type MemoryStats struct {
	Alloc     uint64 `json:"alloc"`
	Sys       uint64 `json:"sys"`
	HeapInUse uint64 `json:"heapInUse"`
	NumGC     uint32 `json:"numGC"`
}

type HealthResp struct {
	Status            string      `json:"status"`
	Timestamp         string      `json:"timestamp"`
	UptimeSeconds     float64     `json:"uptime"`
	Memory            MemoryStats `json:"memory"`
	Goroutines        int         `json:"goroutines"`
	Version           string      `json:"version"`
	ActiveConnections int64       `json:"activeConnections"`
	TotalConnections  int64       `json:"totalConnections"`
}

// ProgressUpdate is a per-turn learning snapshot for one connection.
type ProgressUpdate struct {
	ConnectionID    string `json:"connectionId"`
	Timestamp       string `json:"timestamp"`
	LearningMode    string `json:"learningMode"`
	GrammarScore    int    `json:"grammarScore"`
	FluencyScore    int    `json:"fluencyScore"`
	VocabularyLevel string `json:"vocabularyLevel"`
	WordCount       int    `json:"wordCount"`
}

type AnalysisSummary struct {
	WordCount          int    `json:"wordCount"`
	GrammarIssuesCount int    `json:"grammarIssuesCount"`
	FluencyScore       int    `json:"fluencyScore"`
	VocabularyLevel    string `json:"vocabularyLevel"`
}

// InteractionLog records one handled chat message. UserMessage and
// TutorReply are truncated.
type InteractionLog struct {
	Timestamp        string           `json:"timestamp"`
	ConnectionID     string           `json:"connectionId"`
	UserMessage      string           `json:"userMessage"`
	TutorReply       string           `json:"tutorReply"`
	LearningMode     string           `json:"learningMode"`
	DifficultyLevel  string           `json:"difficultyLevel"`
	SpeechAnalysis   *AnalysisSummary `json:"speechAnalysis"`
	ProcessingTimeMs int64            `json:"processingTime"`
	Success          bool             `json:"success"`
	ErrorDetails     string           `json:"errorDetails,omitempty"`
}
