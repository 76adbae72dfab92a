package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"scrimtime/pkg/logger"
	"scrimtime/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// SessionValidator validates the request payloads entering the engine.
// Completeness against the session's window is the coordinator's job since
// it needs the stored window; this layer checks shape only.
type SessionValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewSessionValidator(log *logger.Logger) *SessionValidator {
	v := validator.New()

	if err := v.RegisterValidation("slot_code", validateSlotCode); err != nil {
		log.Fatal("Failed to register 'slot_code' validator", "error", err)
	}
	if err := v.RegisterValidation("day_mode", validateDayMode); err != nil {
		log.Fatal("Failed to register 'day_mode' validator", "error", err)
	}

	return &SessionValidator{
		validate: v,
		logger:   log,
	}
}

func (sv *SessionValidator) ValidateStart(req *model.StartSessionRequest) error {
	return sv.translate(sv.validate.Struct(req))
}

func (sv *SessionValidator) ValidateSubmit(req *model.SubmitScheduleRequest) error {
	if err := sv.translate(sv.validate.Struct(req)); err != nil {
		return err
	}

	var errs ValidationErrors
	for day, input := range req.Days {
		if input.Mode == model.DayModePartial && len(input.Slots) == 0 {
			errs = append(errs, ValidationError{
				Field:   day,
				Message: "partial availability requires at least one slot",
			})
		}
		if input.Mode != model.DayModePartial && len(input.Slots) > 0 {
			errs = append(errs, ValidationError{
				Field:   day,
				Message: fmt.Sprintf("slots must not be set for mode %q", input.Mode),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (sv *SessionValidator) ValidateRespond(req *model.RespondRequest) error {
	return sv.translate(sv.validate.Struct(req))
}

func (sv *SessionValidator) translate(err error) error {
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var errs ValidationErrors
	for _, fe := range fieldErrors {
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: messageForTag(fe),
		})
	}
	return errs
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "slot_code":
		return fmt.Sprintf("is not a valid time slot (valid: %v)", model.SlotDomain)
	case "day_mode":
		return fmt.Sprintf("is not a valid day mode (valid: %s, %s, %s)",
			model.DayModeAllDay, model.DayModeUnavailable, model.DayModePartial)
	default:
		return fmt.Sprintf("failed validation rule %q", fe.Tag())
	}
}

func validateSlotCode(fl validator.FieldLevel) bool {
	return model.ValidSlot(model.Slot(fl.Field().String()))
}

func validateDayMode(fl validator.FieldLevel) bool {
	switch model.DayMode(fl.Field().String()) {
	case model.DayModeAllDay, model.DayModeUnavailable, model.DayModePartial:
		return true
	}
	return false
}
