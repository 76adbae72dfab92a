package events

import (
	"context"
	"fmt"

	"scrimtime/internal/scheduling/service"
	apperrors "scrimtime/pkg/errors"
	"scrimtime/pkg/kafka"
	"scrimtime/pkg/logger"
	"scrimtime/pkg/model"
)

// Command types accepted on the commands topic. Bots and other automation
// drive sessions through these instead of the HTTP surface.
const (
	CommandStartSession   = "command.start_session"
	CommandSubmitSchedule = "command.submit_schedule"
	CommandRespond        = "command.respond"
	CommandNextTime       = "command.next_time"
	CommandCancelSession  = "command.cancel_session"
)

type submitScheduleCommand struct {
	Participant string                    `json:"participant"`
	Days        map[string]model.DayInput `json:"days"`
}

// CommandHandler maps inbound command messages onto session operations.
// Malformed and rejected commands are permanent failures; they go to the
// DLQ instead of being retried forever.
type CommandHandler struct {
	svc service.SessionService
	log *logger.Logger
}

func NewCommandHandler(svc service.SessionService, log *logger.Logger) *CommandHandler {
	return &CommandHandler{svc: svc, log: log}
}

// Handle is the kafka.MessageHandler for the commands topic. The message key
// is the session key, which keeps all commands for one session in order on
// one partition.
func (h *CommandHandler) Handle(ctx context.Context, msg kafka.Message) error {
	key := msg.Key
	commandType := msg.GetEventType()

	var err error
	switch commandType {
	case CommandStartSession:
		err = h.handleStart(ctx, msg)
	case CommandSubmitSchedule:
		err = h.handleSubmit(ctx, key, msg)
	case CommandRespond:
		err = h.handleRespond(ctx, key, msg)
	case CommandNextTime:
		_, err = h.svc.RequestNextTime(ctx, key)
	case CommandCancelSession:
		err = h.svc.Cancel(ctx, key)
	default:
		return fmt.Errorf("unknown command type: %q", commandType)
	}

	if err != nil {
		// Domain rejections are not worth a redelivery; surface them in the
		// log and let the message through.
		if appErr := apperrors.AsAppError(err); appErr.HTTPStatus < 500 {
			h.log.Warn("Command rejected",
				"command", commandType,
				"key", key,
				"code", appErr.Code,
				"message", appErr.Message,
			)
			return nil
		}
		return err
	}
	return nil
}

func (h *CommandHandler) handleStart(ctx context.Context, msg kafka.Message) error {
	var req model.StartSessionRequest
	if err := msg.DecodeValue(&req); err != nil {
		return fmt.Errorf("decode start command: %w", err)
	}
	_, err := h.svc.Start(ctx, &req)
	return err
}

func (h *CommandHandler) handleSubmit(ctx context.Context, key string, msg kafka.Message) error {
	var cmd submitScheduleCommand
	if err := msg.DecodeValue(&cmd); err != nil {
		return fmt.Errorf("decode submit command: %w", err)
	}
	_, err := h.svc.SubmitSchedule(ctx, key, cmd.Participant, &model.SubmitScheduleRequest{Days: cmd.Days})
	return err
}

func (h *CommandHandler) handleRespond(ctx context.Context, key string, msg kafka.Message) error {
	var req model.RespondRequest
	if err := msg.DecodeValue(&req); err != nil {
		return fmt.Errorf("decode respond command: %w", err)
	}
	_, err := h.svc.Respond(ctx, key, &req)
	return err
}
