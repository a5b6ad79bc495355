package domain

// ChargeRequest is sent to the payment collaborator to unlock the export.
type ChargeRequest struct {
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Amount         float64 `json:"amount"`
	FlashcardCount int     `json:"flashcard_count"`
}

// ChargeResult is the payment collaborator's answer to a 2xx charge.
type ChargeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
