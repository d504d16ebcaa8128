package reports

import (
	"time"

	"github.com/jobpay/jobpay-backend/internal/jobs"
	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
)

// NewWindow widens start to the beginning of its day and end to the last
// instant of its day, both in UTC. Nil bounds stay open.
func NewWindow(start, end *time.Time) (jobs.Window, error) {
	var window jobs.Window
	if start != nil {
		from := startOfDay(*start)
		window.From = &from
	}
	if end != nil {
		to := endOfDay(*end)
		window.To = &to
	}
	if window.From != nil && window.To != nil && window.From.After(*window.To) {
		return jobs.Window{}, pkgerrors.New(pkgerrors.CodeValidation, "start must not be after end").
			WithReason(ReasonInvalidRange)
	}
	return window, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
