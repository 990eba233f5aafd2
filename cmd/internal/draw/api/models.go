package drawapi

import "time"

type participantRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

type setupRequest struct {
	Participants []participantRequest `json:"participants"`
}

type setupResponse struct {
	DrawID  string   `json:"draw_id"`
	Total   int      `json:"total"`
	Sent    int      `json:"sent"`
	Failed  []string `json:"failed,omitempty"`
	Message string   `json:"message"`
}

type revealResponse struct {
	Giver           string `json:"giver"`
	Recipient       string `json:"recipient"`
	AlreadyRevealed bool   `json:"alreadyRevealed"`
}

type participantStatusResponse struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Department  string     `json:"department,omitempty"`
	HasRevealed bool       `json:"hasRevealed"`
	RevealedAt  *time.Time `json:"revealedAt,omitempty"`
}

type statusResponse struct {
	DrawID         string                      `json:"draw_id,omitempty"`
	Mode           string                      `json:"mode,omitempty"`
	Total          int                         `json:"total"`
	Revealed       int                         `json:"revealed"`
	Participants   []participantStatusResponse `json:"participants"`
	RemainingCount int                         `json:"remainingCount,omitempty"`
	RemainingNames []string                    `json:"remainingNames,omitempty"`
}

type resetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type remindResponse struct {
	Pending  int      `json:"pending"`
	Assigned int      `json:"assigned"`
	Skipped  int      `json:"skipped,omitempty"`
	Sent     int      `json:"sent"`
	Failed   []string `json:"failed,omitempty"`
	Message  string   `json:"message"`
}
