package domain

// Concierge chat message roles and types.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"

	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeAudio = "audio"
)

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatSession is returned by POST /ai-chat/create-session.
type ChatSession struct {
	SessionID   string     `json:"session_id"`
	ChatHistory []ChatTurn `json:"chat_history"`
	Status      string     `json:"status"`
	Language    string     `json:"language"`
}

type AnalysisResult struct {
	Landmark    string `json:"landmark,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// MessageMetadata is attached to concierge messages; which fields are set depends on the intent.
type MessageMetadata struct {
	Intent                string          `json:"intent,omitempty"`
	Trips                 []Trip          `json:"trips,omitempty"`
	HasTrips              bool            `json:"has_trips,omitempty"`
	HasActiveTripCreation bool            `json:"has_active_trip_creation,omitempty"`
	CollectionStatus      string          `json:"collection_status,omitempty"`
	NextField             string          `json:"next_field,omitempty"`
	TripContext           map[string]any  `json:"trip_context,omitempty"`
	TripCreated           bool            `json:"trip_created,omitempty"`
	TripID                int64           `json:"trip_id,omitempty"`
	Width                 int             `json:"width,omitempty"`
	Height                int             `json:"height,omitempty"`
	AnalysisRequested     bool            `json:"analysis_requested,omitempty"`
	AnalysisResult        *AnalysisResult `json:"analysis_result,omitempty"`
	Duration              float64         `json:"duration,omitempty"`
	Transcription         string          `json:"transcription,omitempty"`
}

type ChatMessage struct {
	ID          int64            `json:"id"`
	SessionID   string           `json:"session_id"`
	Role        string           `json:"role"`
	Content     string           `json:"content"`
	MessageType string           `json:"message_type"`
	MediaURL    string           `json:"media_url,omitempty"`
	Metadata    *MessageMetadata `json:"message_metadata,omitempty"`
	CreatedAt   string           `json:"created_at"`
}

// ChatReply is the data of POST /ai-chat/message.
type ChatReply struct {
	SessionID        string         `json:"session_id"`
	Response         string         `json:"response"`
	Intent           string         `json:"intent,omitempty"`
	Trips            []Trip         `json:"trips,omitempty"`
	HasTrips         bool           `json:"has_trips,omitempty"`
	CollectionStatus string         `json:"collection_status,omitempty"`
	NextField        string         `json:"next_field,omitempty"`
	TripContext      map[string]any `json:"trip_context,omitempty"`
	TripCreated      bool           `json:"trip_created,omitempty"`
	TripID           int64          `json:"trip_id,omitempty"`
}

// ChatHistory is a page of GET /ai-chat/history/{session_id}.
type ChatHistory struct {
	Messages []ChatMessage `json:"messages"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PerPage  int           `json:"per_page"`
	HasMore  bool          `json:"has_more"`
}
