package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	schedulingerrors "scrimtime/internal/scheduling/errors"
	"scrimtime/internal/scheduling/notify"
	"scrimtime/internal/scheduling/repository"
	"scrimtime/internal/scheduling/validator"
	"scrimtime/pkg/config"
	apperrors "scrimtime/pkg/errors"
	"scrimtime/pkg/model"
	"scrimtime/pkg/sanitizer"
)

// SessionService is the coordination surface the outside world drives the
// engine through. Every mutating call is a load-mutate-store cycle against
// the session store, retried on version conflicts, so concurrent submissions
// and responses never clobber one another.
type SessionService interface {
	Start(ctx context.Context, req *model.StartSessionRequest) (*model.SessionStatus, error)
	SubmitSchedule(ctx context.Context, key, participant string, req *model.SubmitScheduleRequest) (*model.SessionStatus, error)
	RemoveSchedule(ctx context.Context, key, participant string) (*model.SessionStatus, error)
	Respond(ctx context.Context, key string, req *model.RespondRequest) (*model.SessionStatus, error)
	RequestNextTime(ctx context.Context, key string) (*model.SessionStatus, error)
	Cancel(ctx context.Context, key string) error
	Status(ctx context.Context, key string) (*model.SessionStatus, error)
	ListActive(ctx context.Context, limit int, offset int64) ([]*model.SessionStatus, int64, error)
	DeactivateStale(ctx context.Context) (int64, error)
}

type sessionService struct {
	repo      repository.SessionRepository
	validator *validator.SessionValidator
	notifier  notify.Notifier
	cfg       *config.Config
	now       func() time.Time
}

func NewSessionService(
	repo repository.SessionRepository,
	validator *validator.SessionValidator,
	notifier notify.Notifier,
	cfg *config.Config,
) SessionService {
	return &sessionService{
		repo:      repo,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (svc *sessionService) Start(ctx context.Context, req *model.StartSessionRequest) (*model.SessionStatus, error) {
	req.Key = sanitizer.NormalizeSessionKey(req.Key)
	req.TeamA = sanitizer.NormalizeTeamName(req.TeamA)
	req.TeamB = sanitizer.NormalizeTeamName(req.TeamB)

	if err := svc.validator.ValidateStart(req); err != nil {
		return nil, apperrors.Validation("Invalid session request", map[string]any{
			"error": err.Error(),
		})
	}

	expected := req.ExpectedParticipants
	if expected == 0 {
		expected = svc.cfg.ExpectedParticipants
	}

	session := model.NewSchedulingSession(req.Key, req.TeamA, req.TeamB, expected, svc.now())
	if err := svc.repo.Insert(ctx, session); err != nil {
		if errors.Is(err, schedulingerrors.ErrSessionExists) {
			return nil, apperrors.Conflict("An active scheduling session already exists for this key")
		}
		svc.cfg.Log.Error("Failed to start session", "key", req.Key, "error", err)
		return nil, apperrors.Internal("Failed to start session", err)
	}

	svc.cfg.Log.Info("Scheduling session started",
		"key", session.Key,
		"team_a", session.TeamA,
		"team_b", session.TeamB,
		"expected_participants", session.ExpectedParticipants,
	)
	return session.Status(), nil
}

func (svc *sessionService) SubmitSchedule(ctx context.Context, key, participant string, req *model.SubmitScheduleRequest) (*model.SessionStatus, error) {
	key = sanitizer.NormalizeSessionKey(key)
	participant = sanitizer.NormalizeParticipantID(participant)
	if participant == "" {
		return nil, apperrors.InvalidInput("participant cannot be empty")
	}

	if err := svc.validator.ValidateSubmit(req); err != nil {
		return nil, apperrors.Validation("Invalid schedule submission", map[string]any{
			"error": err.Error(),
		})
	}

	session, err := svc.withSession(ctx, key, func(s *model.SchedulingSession) ([]model.NotificationEvent, error) {
		if !s.HasParticipant(participant) && len(s.Schedules) >= s.ExpectedParticipants {
			return nil, apperrors.Validation("Session already has all expected participants", map[string]any{
				"expected_participants": s.ExpectedParticipants,
			})
		}

		schedule := make(model.ParticipantSchedule, len(req.Days))
		for day, input := range req.Days {
			if s.Window.DayIndex(day) < 0 {
				return nil, apperrors.Validation(fmt.Sprintf("%q is not a day of the scheduling window", day), map[string]any{
					"valid_days": s.Window.Weekdays(),
				})
			}
			slots, err := input.Normalize()
			if err != nil {
				return nil, apperrors.Validation("Invalid availability for "+day, map[string]any{
					"error": err.Error(),
				})
			}
			schedule.SetDay(day, slots)
		}

		if missing := schedule.MissingDays(s.Window); len(missing) > 0 {
			return nil, apperrors.Validation("Schedule must cover every day of the window", map[string]any{
				"missing_days": missing,
			})
		}

		s.Schedules[participant] = schedule

		if s.State == model.StateAwaitingSubmissions && s.ReadyToSearch() {
			return runSearch(s, svc.now()), nil
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	svc.cfg.Log.Info("Schedule submitted",
		"key", key,
		"participant", participant,
		"submitted", len(session.Schedules),
		"state", session.State,
	)
	return session.Status(), nil
}

func (svc *sessionService) RemoveSchedule(ctx context.Context, key, participant string) (*model.SessionStatus, error) {
	key = sanitizer.NormalizeSessionKey(key)
	participant = sanitizer.NormalizeParticipantID(participant)

	session, err := svc.withSession(ctx, key, func(s *model.SchedulingSession) ([]model.NotificationEvent, error) {
		if !s.HasParticipant(participant) {
			return nil, apperrors.NotFoundWithKey("Participant schedule", participant)
		}

		delete(s.Schedules, participant)
		delete(s.Confirmations, participant)

		// Losing a submission drops the session below quorum; any proposal on
		// the table is no longer backed by a full match.
		if s.State != model.StateAwaitingSubmissions {
			s.State = model.StateAwaitingSubmissions
			s.CurrentProposal = nil
			s.Confirmations = make(map[string]bool)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	svc.cfg.Log.Info("Schedule removed", "key", key, "participant", participant)
	return session.Status(), nil
}

func (svc *sessionService) Respond(ctx context.Context, key string, req *model.RespondRequest) (*model.SessionStatus, error) {
	key = sanitizer.NormalizeSessionKey(key)
	req.Participant = sanitizer.NormalizeParticipantID(req.Participant)

	if err := svc.validator.ValidateRespond(req); err != nil {
		return nil, apperrors.Validation("Invalid response", map[string]any{
			"error": err.Error(),
		})
	}

	session, err := svc.withSession(ctx, key, func(s *model.SchedulingSession) ([]model.NotificationEvent, error) {
		events, err := applyResponse(s, req.Participant, req.Accept, svc.now())
		if err != nil {
			if errors.Is(err, schedulingerrors.ErrNotParticipant) {
				return nil, apperrors.Validation("Participant is not part of this session", map[string]any{
					"participant": req.Participant,
				})
			}
			if errors.Is(err, schedulingerrors.ErrNoProposal) {
				return nil, apperrors.Conflict(err.Error())
			}
			return nil, err
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}

	svc.cfg.Log.Info("Proposal response recorded",
		"key", key,
		"participant", req.Participant,
		"accept", req.Accept,
		"state", session.State,
	)
	return session.Status(), nil
}

func (svc *sessionService) RequestNextTime(ctx context.Context, key string) (*model.SessionStatus, error) {
	key = sanitizer.NormalizeSessionKey(key)

	session, err := svc.withSession(ctx, key, func(s *model.SchedulingSession) ([]model.NotificationEvent, error) {
		if !s.ReadyToSearch() {
			return nil, apperrors.Validation("Not all participants have submitted their availability", map[string]any{
				"submitted":             len(s.Schedules),
				"expected_participants": s.ExpectedParticipants,
			})
		}
		return runSearch(s, svc.now()), nil
	})
	if err != nil {
		return nil, err
	}

	svc.cfg.Log.Info("Next time requested", "key", key, "state", session.State)
	return session.Status(), nil
}

func (svc *sessionService) Cancel(ctx context.Context, key string) error {
	key = sanitizer.NormalizeSessionKey(key)

	session, err := svc.repo.FindActiveByKey(ctx, key)
	if err != nil {
		if errors.Is(err, schedulingerrors.ErrNotFound) {
			return apperrors.NotFoundWithKey("Scheduling session", key)
		}
		return apperrors.Internal("Failed to load session", err)
	}

	if err := svc.repo.Deactivate(ctx, key); err != nil {
		if errors.Is(err, schedulingerrors.ErrNotFound) {
			return apperrors.NotFoundWithKey("Scheduling session", key)
		}
		svc.cfg.Log.Error("Failed to cancel session", "key", key, "error", err)
		return apperrors.Internal("Failed to cancel session", err)
	}

	session.State = model.StateExhausted
	session.Active = false
	svc.publish(ctx, []model.NotificationEvent{{
		Type:       model.EventCancelled,
		SessionKey: session.Key,
		TeamA:      session.TeamA,
		TeamB:      session.TeamB,
		OccurredAt: svc.now().UTC(),
	}})

	svc.cfg.Log.Info("Scheduling session cancelled", "key", key)
	return nil
}

func (svc *sessionService) Status(ctx context.Context, key string) (*model.SessionStatus, error) {
	key = sanitizer.NormalizeSessionKey(key)

	session, err := svc.repo.FindActiveByKey(ctx, key)
	if err != nil {
		if errors.Is(err, schedulingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithKey("Scheduling session", key)
		}
		svc.cfg.Log.Error("Failed to load session status", "key", key, "error", err)
		return nil, apperrors.Internal("Failed to load session", err)
	}
	return session.Status(), nil
}

func (svc *sessionService) ListActive(ctx context.Context, limit int, offset int64) ([]*model.SessionStatus, int64, error) {
	sessions, err := svc.repo.ListActive(ctx, limit, offset)
	if err != nil {
		svc.cfg.Log.Error("Failed to list sessions", "error", err)
		return nil, 0, apperrors.Internal("Failed to list sessions", err)
	}

	count, err := svc.repo.CountActive(ctx)
	if err != nil {
		svc.cfg.Log.Error("Failed to count sessions", "error", err)
		return nil, 0, apperrors.Internal("Failed to count sessions", err)
	}

	statuses := make([]*model.SessionStatus, 0, len(sessions))
	for _, s := range sessions {
		statuses = append(statuses, s.Status())
	}
	return statuses, count, nil
}

func (svc *sessionService) DeactivateStale(ctx context.Context) (int64, error) {
	n, err := svc.repo.DeactivateStale(ctx, svc.cfg.SessionMaxAge)
	if err != nil {
		svc.cfg.Log.Error("Failed to deactivate stale sessions", "error", err)
		return 0, apperrors.Internal("Failed to deactivate stale sessions", err)
	}
	if n > 0 {
		svc.cfg.Log.Info("Deactivated stale sessions", "count", n, "max_age", svc.cfg.SessionMaxAge)
	}
	return n, nil
}

// withSession runs one load-mutate-store cycle, retrying the whole cycle
// when another writer got there first. The mutation must be safe to reapply
// against a freshly loaded session.
func (svc *sessionService) withSession(
	ctx context.Context,
	key string,
	mutate func(*model.SchedulingSession) ([]model.NotificationEvent, error),
) (*model.SchedulingSession, error) {
	for attempt := 0; attempt < svc.cfg.ConflictRetries; attempt++ {
		session, err := svc.repo.FindActiveByKey(ctx, key)
		if err != nil {
			if errors.Is(err, schedulingerrors.ErrNotFound) {
				return nil, apperrors.NotFoundWithKey("Scheduling session", key)
			}
			svc.cfg.Log.Error("Failed to load session", "key", key, "error", err)
			return nil, apperrors.Internal("Failed to load session", err)
		}

		events, err := mutate(session)
		if err != nil {
			return nil, err
		}

		if err := svc.repo.Update(ctx, session); err != nil {
			if errors.Is(err, schedulingerrors.ErrVersionConflict) {
				svc.cfg.Log.Warn("Concurrent session write, retrying",
					"key", key,
					"attempt", attempt+1,
				)
				continue
			}
			svc.cfg.Log.Error("Failed to store session", "key", key, "error", err)
			return nil, apperrors.Internal("Failed to store session", err)
		}

		svc.publish(ctx, events)
		return session, nil
	}

	return nil, apperrors.Conflict("Session is being modified concurrently, please retry")
}

// publish delivers events best-effort; a notification failure must not fail
// the already-persisted state transition.
func (svc *sessionService) publish(ctx context.Context, events []model.NotificationEvent) {
	for _, event := range events {
		if err := svc.notifier.Notify(ctx, event); err != nil {
			svc.cfg.Log.Error("Failed to publish notification",
				"type", event.Type,
				"key", event.SessionKey,
				"error", err,
			)
		}
	}
}
