package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	schedulingerrors "scrimtime/internal/scheduling/errors"
	"scrimtime/internal/scheduling/validator"
	"scrimtime/pkg/config"
	apperrors "scrimtime/pkg/errors"
	"scrimtime/pkg/logger"
	"scrimtime/pkg/model"
)

// fakeSessionRepository keeps one session in memory and hands out copies,
// the way a real load-mutate-store cycle would. updateErrs are popped one
// per Update call before the write goes through.
type fakeSessionRepository struct {
	session    *model.SchedulingSession
	insertErr  error
	updateErrs []error
	updates    int
}

func cloneSession(s *model.SchedulingSession) *model.SchedulingSession {
	data, _ := json.Marshal(s)
	var out model.SchedulingSession
	_ = json.Unmarshal(data, &out)
	out.Version = s.Version
	out.Active = s.Active
	return &out
}

func (f *fakeSessionRepository) Insert(_ context.Context, s *model.SchedulingSession) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if f.session != nil && f.session.Active && f.session.Key == s.Key {
		return fmt.Errorf("%w: %s", schedulingerrors.ErrSessionExists, s.Key)
	}
	s.Version = 1
	f.session = cloneSession(s)
	return nil
}

func (f *fakeSessionRepository) FindActiveByKey(_ context.Context, key string) (*model.SchedulingSession, error) {
	if f.session == nil || !f.session.Active || f.session.Key != key {
		return nil, fmt.Errorf("%w: %s", schedulingerrors.ErrNotFound, key)
	}
	return cloneSession(f.session), nil
}

func (f *fakeSessionRepository) Update(_ context.Context, s *model.SchedulingSession) error {
	f.updates++
	if len(f.updateErrs) > 0 {
		err := f.updateErrs[0]
		f.updateErrs = f.updateErrs[1:]
		if err != nil {
			return err
		}
	}
	s.Version++
	f.session = cloneSession(s)
	return nil
}

func (f *fakeSessionRepository) Deactivate(_ context.Context, key string) error {
	if f.session == nil || !f.session.Active || f.session.Key != key {
		return fmt.Errorf("%w: %s", schedulingerrors.ErrNotFound, key)
	}
	f.session.Active = false
	return nil
}

func (f *fakeSessionRepository) ListActive(_ context.Context, _ int, _ int64) ([]*model.SchedulingSession, error) {
	if f.session != nil && f.session.Active {
		return []*model.SchedulingSession{cloneSession(f.session)}, nil
	}
	return nil, nil
}

func (f *fakeSessionRepository) CountActive(_ context.Context) (int64, error) {
	if f.session != nil && f.session.Active {
		return 1, nil
	}
	return 0, nil
}

func (f *fakeSessionRepository) DeactivateStale(_ context.Context, _ time.Duration) (int64, error) {
	return 0, nil
}

type captureNotifier struct {
	events []model.NotificationEvent
}

func (n *captureNotifier) Notify(_ context.Context, event model.NotificationEvent) error {
	n.events = append(n.events, event)
	return nil
}

func (n *captureNotifier) types() []model.EventType {
	out := make([]model.EventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

func testConfig(expected int) *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.FormatText,
			Service: "test",
		}),
		ExpectedParticipants: expected,
		ConflictRetries:      3,
		SessionMaxAge:        14 * 24 * time.Hour,
	}
}

func newTestService(expected int) (SessionService, *fakeSessionRepository, *captureNotifier) {
	cfg := testConfig(expected)
	repo := &fakeSessionRepository{}
	notifier := &captureNotifier{}
	svc := NewSessionService(repo, validator.NewSessionValidator(cfg.Log), notifier, cfg)
	return svc, repo, notifier
}

func allDayRequest(window model.ScheduleWindow) *model.SubmitScheduleRequest {
	days := make(map[string]model.DayInput, len(window))
	for _, d := range window {
		days[d.Weekday] = model.DayInput{Mode: model.DayModeAllDay}
	}
	return &model.SubmitScheduleRequest{Days: days}
}

func startSession(t *testing.T, svc SessionService) *model.SessionStatus {
	t.Helper()
	status, err := svc.Start(context.Background(), &model.StartSessionRequest{
		Key:   "alpha-vs-bravo",
		TeamA: "Alpha",
		TeamB: "Bravo",
	})
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	return status
}

func TestStartSession(t *testing.T) {
	svc, repo, _ := newTestService(2)

	status := startSession(t, svc)
	if status.State != model.StateAwaitingSubmissions {
		t.Errorf("expected state %s, got %s", model.StateAwaitingSubmissions, status.State)
	}
	if status.ExpectedParticipants != 2 {
		t.Errorf("expected the configured default of 2 participants, got %d", status.ExpectedParticipants)
	}
	if len(status.Window) != model.WindowDays {
		t.Errorf("expected a %d-day window, got %d", model.WindowDays, len(status.Window))
	}
	if repo.session == nil || !repo.session.Active {
		t.Fatal("expected an active session in the store")
	}

	_, err := svc.Start(context.Background(), &model.StartSessionRequest{
		Key: "alpha-vs-bravo", TeamA: "Alpha", TeamB: "Bravo",
	})
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus != http.StatusConflict {
		t.Errorf("expected a conflict for a duplicate key, got %v", err)
	}
}

func TestStartSessionValidation(t *testing.T) {
	svc, _, _ := newTestService(2)

	_, err := svc.Start(context.Background(), &model.StartSessionRequest{Key: "k"})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected %s, got %v", apperrors.CodeValidation, err)
	}
}

func TestSubmitScheduleReachesQuorum(t *testing.T) {
	svc, repo, notifier := newTestService(2)
	startSession(t, svc)
	ctx := context.Background()
	req := allDayRequest(repo.session.Window)

	status, err := svc.SubmitSchedule(ctx, "alpha-vs-bravo", "ana", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != model.StateAwaitingSubmissions {
		t.Errorf("one of two submissions must not trigger the search, got %s", status.State)
	}
	if len(notifier.events) != 0 {
		t.Errorf("expected no events yet, got %v", notifier.types())
	}

	status, err = svc.SubmitSchedule(ctx, "alpha-vs-bravo", "ben", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != model.StateProposedFull {
		t.Fatalf("expected %s after the quorum submission, got %s", model.StateProposedFull, status.State)
	}
	if len(notifier.events) != 1 || notifier.events[0].Type != model.EventProposalFull {
		t.Fatalf("expected one proposal.full event, got %v", notifier.types())
	}
	if repo.session.State != model.StateProposedFull {
		t.Error("expected the transition to be persisted")
	}
}

func TestSubmitScheduleMustCoverWindow(t *testing.T) {
	svc, repo, _ := newTestService(2)
	startSession(t, svc)

	days := map[string]model.DayInput{
		repo.session.Window[0].Weekday: {Mode: model.DayModeAllDay},
	}
	_, err := svc.SubmitSchedule(context.Background(), "alpha-vs-bravo", "ana", &model.SubmitScheduleRequest{Days: days})
	if err == nil {
		t.Fatal("expected an incomplete schedule to be rejected")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected %s, got %v", apperrors.CodeValidation, err)
	}
	if appErr.Details["missing_days"] == nil {
		t.Errorf("expected the missing days to be reported, got %v", appErr.Details)
	}
}

func TestSubmitScheduleRejectsUnknownDay(t *testing.T) {
	svc, repo, _ := newTestService(2)
	startSession(t, svc)

	req := allDayRequest(repo.session.Window)
	delete(req.Days, repo.session.Window[0].Weekday)
	req.Days["Someday"] = model.DayInput{Mode: model.DayModeAllDay}

	_, err := svc.SubmitSchedule(context.Background(), "alpha-vs-bravo", "ana", req)
	if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected a validation error for an unknown weekday, got %v", err)
	}
}

func TestSubmitScheduleSessionFull(t *testing.T) {
	svc, repo, _ := newTestService(2)
	startSession(t, svc)
	ctx := context.Background()
	req := allDayRequest(repo.session.Window)

	for _, p := range []string{"ana", "ben"} {
		if _, err := svc.SubmitSchedule(ctx, "alpha-vs-bravo", p, req); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	_, err := svc.SubmitSchedule(ctx, "alpha-vs-bravo", "zoe", req)
	if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected a new participant to be rejected at full quorum, got %v", err)
	}

	// A known participant may still resubmit.
	if _, err := svc.SubmitSchedule(ctx, "alpha-vs-bravo", "ana", req); err != nil {
		t.Errorf("expected a resubmission to be accepted, got %v", err)
	}
}

func TestRespondConfirmsAndDeactivates(t *testing.T) {
	svc, repo, notifier := newTestService(2)
	startSession(t, svc)
	ctx := context.Background()
	req := allDayRequest(repo.session.Window)
	for _, p := range []string{"ana", "ben"} {
		if _, err := svc.SubmitSchedule(ctx, "alpha-vs-bravo", p, req); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	if _, err := svc.Respond(ctx, "alpha-vs-bravo", &model.RespondRequest{Participant: "ana", Accept: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status, err := svc.Respond(ctx, "alpha-vs-bravo", &model.RespondRequest{Participant: "ben", Accept: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != model.StateConfirmed {
		t.Fatalf("expected %s, got %s", model.StateConfirmed, status.State)
	}

	last := notifier.events[len(notifier.events)-1]
	if last.Type != model.EventConfirmed {
		t.Errorf("expected a session.confirmed event, got %v", notifier.types())
	}

	// Confirmation retires the session; it no longer shows up as active.
	if _, err := svc.Status(ctx, "alpha-vs-bravo"); err == nil {
		t.Error("expected a confirmed session to be gone from active lookups")
	}
	if repo.session.Active {
		t.Error("expected the stored session to be deactivated")
	}
}

func TestRespondFromNonParticipant(t *testing.T) {
	svc, repo, _ := newTestService(2)
	startSession(t, svc)
	ctx := context.Background()
	req := allDayRequest(repo.session.Window)
	for _, p := range []string{"ana", "ben"} {
		if _, err := svc.SubmitSchedule(ctx, "alpha-vs-bravo", p, req); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	_, err := svc.Respond(ctx, "alpha-vs-bravo", &model.RespondRequest{Participant: "zoe", Accept: true})
	if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected a validation error, got %v", err)
	}
}

func TestRespondWithoutProposal(t *testing.T) {
	svc, repo, _ := newTestService(2)
	startSession(t, svc)
	ctx := context.Background()
	if _, err := svc.SubmitSchedule(ctx, "alpha-vs-bravo", "ana", allDayRequest(repo.session.Window)); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := svc.Respond(ctx, "alpha-vs-bravo", &model.RespondRequest{Participant: "ana", Accept: true})
	if err == nil || apperrors.AsAppError(err).HTTPStatus != http.StatusConflict {
		t.Errorf("expected a conflict while no proposal is on the table, got %v", err)
	}
}

func TestVersionConflictRetry(t *testing.T) {
	svc, repo, _ := newTestService(2)
	startSession(t, svc)
	ctx := context.Background()

	repo.updateErrs = []error{schedulingerrors.ErrVersionConflict}
	if _, err := svc.SubmitSchedule(ctx, "alpha-vs-bravo", "ana", allDayRequest(repo.session.Window)); err != nil {
		t.Fatalf("expected the conflicted write to be retried, got %v", err)
	}
	if repo.updates != 2 {
		t.Errorf("expected 2 update attempts, got %d", repo.updates)
	}
}

func TestVersionConflictExhaustsRetries(t *testing.T) {
	svc, repo, _ := newTestService(2)
	startSession(t, svc)
	ctx := context.Background()

	repo.updateErrs = []error{
		schedulingerrors.ErrVersionConflict,
		schedulingerrors.ErrVersionConflict,
		schedulingerrors.ErrVersionConflict,
	}
	_, err := svc.SubmitSchedule(ctx, "alpha-vs-bravo", "ana", allDayRequest(repo.session.Window))
	if err == nil || apperrors.AsAppError(err).HTTPStatus != http.StatusConflict {
		t.Errorf("expected a conflict after retries run out, got %v", err)
	}
	if repo.updates != 3 {
		t.Errorf("expected 3 update attempts, got %d", repo.updates)
	}
}

func TestRemoveScheduleRewindsSession(t *testing.T) {
	svc, repo, _ := newTestService(2)
	startSession(t, svc)
	ctx := context.Background()
	req := allDayRequest(repo.session.Window)
	for _, p := range []string{"ana", "ben"} {
		if _, err := svc.SubmitSchedule(ctx, "alpha-vs-bravo", p, req); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	if repo.session.State != model.StateProposedFull {
		t.Fatalf("setup: expected a proposal, got %s", repo.session.State)
	}

	status, err := svc.RemoveSchedule(ctx, "alpha-vs-bravo", "ben")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != model.StateAwaitingSubmissions {
		t.Errorf("expected a rewind to %s, got %s", model.StateAwaitingSubmissions, status.State)
	}
	if status.CurrentProposal != nil {
		t.Error("expected the proposal to be withdrawn")
	}
	if len(status.Submitted) != 1 {
		t.Errorf("expected one remaining submission, got %v", status.Submitted)
	}

	_, err = svc.RemoveSchedule(ctx, "alpha-vs-bravo", "zoe")
	if err == nil || apperrors.AsAppError(err).HTTPStatus != http.StatusNotFound {
		t.Errorf("expected not found for an unknown participant, got %v", err)
	}
}

func TestRequestNextTimeRequiresQuorum(t *testing.T) {
	svc, repo, _ := newTestService(2)
	startSession(t, svc)
	ctx := context.Background()

	_, err := svc.RequestNextTime(ctx, "alpha-vs-bravo")
	if err == nil || apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("expected a validation error before all submissions are in, got %v", err)
	}

	req := allDayRequest(repo.session.Window)
	for _, p := range []string{"ana", "ben"} {
		if _, err := svc.SubmitSchedule(ctx, "alpha-vs-bravo", p, req); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	first := *repo.session.CurrentProposal

	status, err := svc.RequestNextTime(ctx, "alpha-vs-bravo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.CurrentProposal == nil || status.CurrentProposal.Slot == first.Slot {
		t.Errorf("expected a different slot, got %+v", status.CurrentProposal)
	}
}

func TestCancelSession(t *testing.T) {
	svc, repo, notifier := newTestService(2)
	startSession(t, svc)
	ctx := context.Background()

	if err := svc.Cancel(ctx, "alpha-vs-bravo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.session.Active {
		t.Error("expected the session to be deactivated")
	}
	last := notifier.events[len(notifier.events)-1]
	if last.Type != model.EventCancelled {
		t.Errorf("expected a session.cancelled event, got %v", notifier.types())
	}

	if err := svc.Cancel(ctx, "alpha-vs-bravo"); err == nil {
		t.Error("expected cancelling twice to fail")
	}
}

func TestListActive(t *testing.T) {
	svc, _, _ := newTestService(2)
	startSession(t, svc)

	statuses, count, err := svc.ListActive(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 || len(statuses) != 1 {
		t.Fatalf("expected one active session, got %d/%d", len(statuses), count)
	}
	if statuses[0].Key != "alpha-vs-bravo" {
		t.Errorf("unexpected session key: %s", statuses[0].Key)
	}
}
