package dto

type AIChatTurn struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

type AIChatRequest struct {
	Message string       `json:"message"`
	History []AIChatTurn `json:"history"`
}

type CrisisResource struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type AIChatResponse struct {
	Reply     string           `json:"reply"`
	Crisis    bool             `json:"crisis"`
	Resources []CrisisResource `json:"resources,omitempty"`
	Source    string           `json:"source"` // model | offline | crisis
}
