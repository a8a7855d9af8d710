package models

// TaskRequest represents the request body for creating or updating a task
type TaskRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	DueDate     string   `json:"dueDate" binding:"required"` // YYYY-MM-DD or RFC3339; only the date part is used
	StartTime   string   `json:"startTime"`                  // HH:MM, defaults to 09:00
	EndTime     string   `json:"endTime"`                    // HH:MM, defaults to 10:00
	Priority    Priority `json:"priority"`                   // Defaults to medium
}

// TaskListResponse represents the response for a task listing
type TaskListResponse struct {
	Tasks []Task `json:"tasks"`
	Count int    `json:"count"`
}

// ChatSessionResponse represents the response when a chat session is created
type ChatSessionResponse struct {
	SessionID string `json:"sessionId"`
}

// ChatMessageRequest represents a message sent to the assistant
type ChatMessageRequest struct {
	Message string `json:"message"`
}

// ChatMessageResponse represents the assistant's reply
type ChatMessageResponse struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
}

// DigestOptInRequest represents the request to opt into weekly progress digests
type DigestOptInRequest struct {
	Email           string  `json:"email" binding:"required,email"`
	Timezone        string  `json:"timezone"`                  // IANA name, defaults to the server timezone
	NextTriggerTime *string `json:"nextTriggerTime,omitempty"` // Optional ISO 8601 override for the weekly send time
}

// DigestSendRequest represents the request to send a digest immediately
type DigestSendRequest struct {
	Email         string `json:"email" binding:"required,email"`
	WeekStartDate string `json:"weekStartDate"` // YYYY-MM-DD, defaults to last week's Monday
}
