package model

import "time"

type Appointment struct {
	ID           string
	BarbershopID string
	ServiceID    string
	StaffID      string
	UnitID       string
	ClientName   string
	ClientPhone  string
	ClientEmail  string
	StartTime    time.Time
	EndTime      time.Time
	Status       string
	CancelledAt  *time.Time
	CancelReason string
	CreatedAt    time.Time
}
