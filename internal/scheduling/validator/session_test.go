package validator

import (
	"strings"
	"testing"

	"scrimtime/pkg/logger"
	"scrimtime/pkg/model"
)

func newValidator(t *testing.T) *SessionValidator {
	t.Helper()
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.FormatText,
		Service: "test",
	})
	return NewSessionValidator(log)
}

func TestValidateStart(t *testing.T) {
	sv := newValidator(t)

	tests := []struct {
		name    string
		req     model.StartSessionRequest
		wantErr string
	}{
		{
			name: "valid request",
			req:  model.StartSessionRequest{Key: "alpha-vs-bravo", TeamA: "Alpha", TeamB: "Bravo"},
		},
		{
			name: "valid with explicit participant count",
			req:  model.StartSessionRequest{Key: "alpha-vs-bravo", TeamA: "Alpha", TeamB: "Bravo", ExpectedParticipants: 8},
		},
		{
			name:    "missing key",
			req:     model.StartSessionRequest{TeamA: "Alpha", TeamB: "Bravo"},
			wantErr: "Key",
		},
		{
			name:    "key too short",
			req:     model.StartSessionRequest{Key: "a", TeamA: "Alpha", TeamB: "Bravo"},
			wantErr: "Key",
		},
		{
			name:    "missing team",
			req:     model.StartSessionRequest{Key: "alpha-vs-bravo", TeamA: "Alpha"},
			wantErr: "TeamB",
		},
		{
			name:    "participant count too small",
			req:     model.StartSessionRequest{Key: "alpha-vs-bravo", TeamA: "Alpha", TeamB: "Bravo", ExpectedParticipants: 1},
			wantErr: "ExpectedParticipants",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sv.ValidateStart(&tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateSubmit(t *testing.T) {
	sv := newValidator(t)

	tests := []struct {
		name    string
		req     model.SubmitScheduleRequest
		wantErr string
	}{
		{
			name: "valid mixed submission",
			req: model.SubmitScheduleRequest{Days: map[string]model.DayInput{
				"Monday":  {Mode: model.DayModeAllDay},
				"Tuesday": {Mode: model.DayModeUnavailable},
				"Friday":  {Mode: model.DayModePartial, Slots: []model.Slot{model.Slot1900, model.Slot2000}},
			}},
		},
		{
			name:    "no days",
			req:     model.SubmitScheduleRequest{},
			wantErr: "Days",
		},
		{
			name: "unknown mode",
			req: model.SubmitScheduleRequest{Days: map[string]model.DayInput{
				"Monday": {Mode: "sometimes"},
			}},
			wantErr: "Mode",
		},
		{
			name: "unknown slot code",
			req: model.SubmitScheduleRequest{Days: map[string]model.DayInput{
				"Monday": {Mode: model.DayModePartial, Slots: []model.Slot{"17:00"}},
			}},
			wantErr: "Slots",
		},
		{
			name: "partial without slots",
			req: model.SubmitScheduleRequest{Days: map[string]model.DayInput{
				"Monday": {Mode: model.DayModePartial},
			}},
			wantErr: "partial availability requires at least one slot",
		},
		{
			name: "slots with all day mode",
			req: model.SubmitScheduleRequest{Days: map[string]model.DayInput{
				"Monday": {Mode: model.DayModeAllDay, Slots: []model.Slot{model.Slot1900}},
			}},
			wantErr: "slots must not be set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sv.ValidateSubmit(&tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateRespond(t *testing.T) {
	sv := newValidator(t)

	if err := sv.ValidateRespond(&model.RespondRequest{Participant: "ana", Accept: true}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := sv.ValidateRespond(&model.RespondRequest{Participant: "ana", Accept: false}); err != nil {
		t.Errorf("a decline is a valid response, got %v", err)
	}
	if err := sv.ValidateRespond(&model.RespondRequest{Accept: true}); err == nil {
		t.Error("expected an error for a missing participant")
	}
}
