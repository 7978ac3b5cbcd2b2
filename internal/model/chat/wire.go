package chat

// Request is the body posted to the chat backend.
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// Response is the success body returned by the chat backend.
type Response struct {
	Response        string   `json:"response"`
	SessionID       string   `json:"session_id,omitempty"`
	DetectedCompany string   `json:"detected_company,omitempty"`
	AgentActions    []string `json:"agent_actions,omitempty"`
}
