package sqlc

import "time"

// Athlete mirrors the athletes table.
type Athlete struct {
	ID          int64
	DisplayName string
	RaceType    string
	Audience    string
	CreatedAt   time.Time
}

// Conversation mirrors the conversations table.
type Conversation struct {
	ID        int64
	AthleteID int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message mirrors the messages table.
type Message struct {
	ID             int64
	ConversationID int64
	Seq            int32
	Author         string
	Role           string
	Content        string
	Timestamp      time.Time
}

// ConversationProgress mirrors the conversation_progress table.
type ConversationProgress struct {
	ConversationID int64
	TargetAction   string
	KnownSlots     []byte // JSONB
	PendingSlot    string
	Summary        string
	Version        int32
	UpdatedAt      time.Time
}

// CorpusDocument mirrors the corpus_documents table.
type CorpusDocument struct {
	ID          string
	Kind        string
	FrontMatter []byte // JSONB
	Body        string
	Embedding   []float64
}

// PlannedSession mirrors the planned_sessions table.
type PlannedSession struct {
	ID            int64
	PlanID        int64
	AthleteID     int64
	StartsAt      time.Time
	EndsAt        time.Time
	Sport         string
	SessionType   string
	Intent        string
	DistanceMeters   float64
	DurationSeconds  int32
	Text          string
	Steps         []byte // JSONB
	Status        string
	Tags          []byte // JSONB
	Version       int32
}

// SessionLink mirrors the session_links table.
type SessionLink struct {
	PlannedSessionID int64
	ActivityID       int64
	Method           string
	Confidence       float64
	LinkedAt         time.Time
}
