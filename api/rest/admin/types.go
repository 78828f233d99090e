package admin

// NotifyRequest is a free-form message for the operators
type NotifyRequest struct {
	Title   string `json:"title" binding:"max=200"`
	Message string `json:"message" binding:"required,min=1,max=2000"`
	Level   string `json:"level" binding:"omitempty,oneof=info warning critical"`
}

// NotifyResponse acknowledges a delivered notification
type NotifyResponse struct {
	Status string `json:"status"`
}
