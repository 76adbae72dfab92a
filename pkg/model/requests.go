package model

// Request payloads shared by the HTTP handlers, the Kafka command consumer
// and the typed client.

type StartSessionRequest struct {
	Key                  string `json:"key" validate:"required,min=2,max=64"`
	TeamA                string `json:"team_a" validate:"required,min=2,max=100"`
	TeamB                string `json:"team_b" validate:"required,min=2,max=100"`
	ExpectedParticipants int    `json:"expected_participants,omitempty" validate:"omitempty,min=2,max=12"`
}

type SubmitScheduleRequest struct {
	Days map[string]DayInput `json:"days" validate:"required,min=1,max=7,dive"`
}

type RespondRequest struct {
	Participant string `json:"participant" validate:"required,min=1,max=64"`
	Accept      bool   `json:"accept"`
}
