package model

import "time"

// WindowDay is one day of the rolling scheduling window. Weekday names are
// the lookup keys for availability, so a window never spans more than 7 days.
type WindowDay struct {
	Weekday string `json:"weekday" bson:"weekday"`
	Date    string `json:"date" bson:"date"`
	Display string `json:"display" bson:"display"`
}

// ScheduleWindow is the ordered 7-day span availability is collected over.
// Generated once at session creation and immutable afterwards.
type ScheduleWindow []WindowDay

const WindowDays = 7

// NewScheduleWindow builds the window starting from the day after now.
func NewScheduleWindow(now time.Time) ScheduleWindow {
	window := make(ScheduleWindow, 0, WindowDays)
	for i := 1; i <= WindowDays; i++ {
		day := now.AddDate(0, 0, i)
		window = append(window, WindowDay{
			Weekday: day.Weekday().String(),
			Date:    day.Format("02/01"),
			Display: day.Format("Monday, 02 Jan 2006"),
		})
	}
	return window
}

// Day returns the descriptor for the given weekday name.
func (w ScheduleWindow) Day(weekday string) (WindowDay, bool) {
	for _, d := range w {
		if d.Weekday == weekday {
			return d, true
		}
	}
	return WindowDay{}, false
}

// DayIndex returns the weekday's position in window order, or -1.
func (w ScheduleWindow) DayIndex(weekday string) int {
	for i, d := range w {
		if d.Weekday == weekday {
			return i
		}
	}
	return -1
}

// Weekdays returns the weekday names in window order.
func (w ScheduleWindow) Weekdays() []string {
	names := make([]string, 0, len(w))
	for _, d := range w {
		names = append(names, d.Weekday)
	}
	return names
}
