// Package trial derives the trial day number, the remaining days and the upsell
// prompt tier from a user's trial window and billing state.
//
// All functions are pure over their inputs and the evaluator's clock. Missing or
// unparsable data is treated as "trial not started", never as an error.
package trial

import (
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/barbershop-manager/internal/models"
)

// Mode is the escalating tier of upsell messaging.
type Mode string

// Prompt modes ordered by severity.
const (
	ModeNone   Mode = "none"
	ModeSoft   Mode = "soft"
	ModeUrgent Mode = "urgent"
	ModeStrong Mode = "strong"
)

// Severity orders modes: none < soft < urgent < strong. Unknown modes rank as none.
func (m Mode) Severity() int {
	switch m {
	case ModeSoft:
		return 1
	case ModeUrgent:
		return 2
	case ModeStrong:
		return 3
	default:
		return 0
	}
}

// Default thresholds.
const (
	DefaultTrialDays       = 21
	DefaultSoftPromptDay   = 14
	DefaultUrgentPromptDay = 18
	DefaultStrongPromptDay = 21
)

// ErrInvalidThresholds is returned by New for a non-ascending threshold set.
var ErrInvalidThresholds = errors.New("invalid trial thresholds")

// Thresholds configures the trial length and the day each prompt tier starts.
type Thresholds struct {
	TrialDays       int
	SoftPromptDay   int
	UrgentPromptDay int
	StrongPromptDay int
}

// DefaultThresholds returns the product defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TrialDays:       DefaultTrialDays,
		SoftPromptDay:   DefaultSoftPromptDay,
		UrgentPromptDay: DefaultUrgentPromptDay,
		StrongPromptDay: DefaultStrongPromptDay,
	}
}

func (t Thresholds) validate() error {
	if t.TrialDays <= 0 {
		return fmt.Errorf("%w: trial days must be positive, got %d", ErrInvalidThresholds, t.TrialDays)
	}
	if t.SoftPromptDay <= 0 || t.SoftPromptDay >= t.UrgentPromptDay || t.UrgentPromptDay >= t.StrongPromptDay {
		return fmt.Errorf("%w: need 0 < soft (%d) < urgent (%d) < strong (%d)",
			ErrInvalidThresholds, t.SoftPromptDay, t.UrgentPromptDay, t.StrongPromptDay)
	}
	return nil
}

// Status is the full evaluation of a profile at a point in time.
type Status struct {
	Active        bool `json:"active"`
	DayNumber     int  `json:"day_number"`
	DaysRemaining int  `json:"days_remaining"`
	TrialDays     int  `json:"trial_days"`
	PromptMode    Mode `json:"prompt_mode"`
}

// Evaluator computes trial state against a clock and the shop's time zone.
type Evaluator struct {
	th  Thresholds
	now func() time.Time
	loc *time.Location
}

// Option customises an Evaluator.
type Option func(*Evaluator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

// WithLocation sets the zone whose midnight bounds a trial day.
func WithLocation(loc *time.Location) Option {
	return func(e *Evaluator) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// New creates an Evaluator. Thresholds must be strictly ascending.
func New(th Thresholds, opts ...Option) (*Evaluator, error) {
	if err := th.validate(); err != nil {
		return nil, err
	}
	e := &Evaluator{
		th:  th,
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Thresholds returns the configured thresholds.
func (e *Evaluator) Thresholds() Thresholds {
	return e.th
}

// IsActive reports whether the profile currently has trial access. A "trialing"
// Stripe status wins over the stored window.
func (e *Evaluator) IsActive(p models.TrialProfile) bool {
	if p.Status() == models.SubscriptionTrialing {
		return true
	}
	if p.TrialActive == nil || !*p.TrialActive || p.TrialStart == nil || p.TrialEnd == nil {
		return false
	}
	now := e.now()
	return !now.Before(*p.TrialStart) && !now.After(*p.TrialEnd)
}

// DayNumber is 1 on the start day and grows by one each local midnight with no
// upper bound. It is 0 when the trial has no start or starts in the future.
func (e *Evaluator) DayNumber(p models.TrialProfile) int {
	if p.TrialStart == nil {
		return 0
	}
	today := calendarDay(e.now(), e.loc)
	start := calendarDay(*p.TrialStart, e.loc)
	if today.Before(start) {
		return 0
	}
	return int(today.Sub(start)/(24*time.Hour)) + 1
}

// DaysRemaining never goes below zero.
func (e *Evaluator) DaysRemaining(p models.TrialProfile) int {
	day := e.DayNumber(p)
	if day == 0 {
		return 0
	}
	return max(0, e.th.TrialDays-day+1)
}

// ShouldShowSoftPrompt covers SoftPromptDay <= day < UrgentPromptDay.
func (e *Evaluator) ShouldShowSoftPrompt(p models.TrialProfile, hasPaymentMethod bool) bool {
	if hasPaymentMethod {
		return false
	}
	day := e.DayNumber(p)
	return day >= e.th.SoftPromptDay && day < e.th.UrgentPromptDay
}

// ShouldShowUrgentPrompt covers UrgentPromptDay <= day < StrongPromptDay.
func (e *Evaluator) ShouldShowUrgentPrompt(p models.TrialProfile, hasPaymentMethod bool) bool {
	if hasPaymentMethod {
		return false
	}
	day := e.DayNumber(p)
	return day >= e.th.UrgentPromptDay && day < e.th.StrongPromptDay
}

// ShouldShowStrongPrompt fires from StrongPromptDay onwards, including after the
// trial window closed, unless the subscription is already active.
func (e *Evaluator) ShouldShowStrongPrompt(p models.TrialProfile, hasPaymentMethod bool) bool {
	if hasPaymentMethod || p.Status() == models.SubscriptionActive {
		return false
	}
	return e.DayNumber(p) >= e.th.StrongPromptDay
}

// PromptMode returns the most severe prompt that applies.
func (e *Evaluator) PromptMode(p models.TrialProfile, hasPaymentMethod bool) Mode {
	switch {
	case e.ShouldShowStrongPrompt(p, hasPaymentMethod):
		return ModeStrong
	case e.ShouldShowUrgentPrompt(p, hasPaymentMethod):
		return ModeUrgent
	case e.ShouldShowSoftPrompt(p, hasPaymentMethod):
		return ModeSoft
	default:
		return ModeNone
	}
}

// Evaluate bundles every derived value for one profile.
func (e *Evaluator) Evaluate(p models.TrialProfile, hasPaymentMethod bool) Status {
	return Status{
		Active:        e.IsActive(p),
		DayNumber:     e.DayNumber(p),
		DaysRemaining: e.DaysRemaining(p),
		TrialDays:     e.th.TrialDays,
		PromptMode:    e.PromptMode(p, hasPaymentMethod),
	}
}

// calendarDay maps t to its local date expressed as UTC midnight, so that
// subtracting two days is DST-safe.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
