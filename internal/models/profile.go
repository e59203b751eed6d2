package models

import (
	"encoding/json"
	"time"
)

// Subscription statuses reported by Stripe that the trial logic cares about.
const (
	SubscriptionTrialing = "trialing"
	SubscriptionActive   = "active"
)

// TrialProfile is the read-only view of a user record needed to evaluate the trial.
// Every field is optional: nil means "not recorded".
type TrialProfile struct {
	TrialActive              *bool      `json:"trial_active"`
	TrialStart               *time.Time `json:"trial_start"`
	TrialEnd                 *time.Time `json:"trial_end"`
	StripeSubscriptionStatus *string    `json:"stripe_subscription_status"`
}

// Status returns the Stripe subscription status or "" when unknown.
func (p TrialProfile) Status() string {
	if p.StripeSubscriptionStatus == nil {
		return ""
	}
	return *p.StripeSubscriptionStatus
}

// UnmarshalJSON decodes timestamps leniently: a malformed value becomes nil
// instead of failing the whole profile.
func (p *TrialProfile) UnmarshalJSON(data []byte) error {
	var raw struct {
		TrialActive              *bool   `json:"trial_active"`
		TrialStart               *string `json:"trial_start"`
		TrialEnd                 *string `json:"trial_end"`
		StripeSubscriptionStatus *string `json:"stripe_subscription_status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.TrialActive = raw.TrialActive
	p.TrialStart = parseTimestamp(raw.TrialStart)
	p.TrialEnd = parseTimestamp(raw.TrialEnd)
	p.StripeSubscriptionStatus = raw.StripeSubscriptionStatus
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

func parseTimestamp(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}
	return nil
}
