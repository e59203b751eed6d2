package models

import "time"

// TrialPromptMessage is published by the trial notifier and consumed by the sender.
type TrialPromptMessage struct {
	UserUID       string `json:"user_uid"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	Mode          string `json:"mode"`
	DayNumber     int    `json:"day_number"`
	DaysRemaining int    `json:"days_remaining"`
}

// Notification is a row of the notifications table shown in the in-app inbox.
type Notification struct {
	ID        int       `json:"id"`
	UserUID   string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}
