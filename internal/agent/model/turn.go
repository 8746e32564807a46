package model

// TurnInput represents one inbound chat message.
type TurnInput struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
	UserID    string `json:"user_id,omitempty"`
}

// TurnOutput is the reply returned to the transport layer.
type TurnOutput struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	Stage       string            `json:"stage"`
	SessionID   string            `json:"session_id"`
	Progress    *int              `json:"progress,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
	ClubID      string            `json:"club_id,omitempty"`
	ErrorID     string            `json:"error_id,omitempty"`
}
