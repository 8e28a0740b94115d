package models

import (
	"encoding/json"
	"time"
)

// DefaultThreshold is the vacancy count used when a subscription does not set one
const DefaultThreshold = 1

// Subscription represents a watch on one UR property
type Subscription struct {
	ID              string     `json:"id"`
	PropertyURL     string     `json:"propertyUrl"`
	PropertyName    string     `json:"propertyName,omitempty"`
	Shisya          string     `json:"shisya"` // Branch code, derived from PropertyURL
	Danchi          string     `json:"danchi"` // Estate code, derived from PropertyURL
	SlackWebhookURL string     `json:"slackWebhookUrl"`
	Threshold       int        `json:"threshold"` // Minimum vacancy count that triggers a notification
	CreatedAt       time.Time  `json:"createdAt"`
	LastChecked     *time.Time `json:"lastChecked,omitempty"`
	LastNotified    *time.Time `json:"lastNotified,omitempty"`
	LastCount       *int       `json:"lastCount,omitempty"`
}

// DisplayName returns the property name, falling back to the estate code
func (s *Subscription) DisplayName() string {
	if s.PropertyName != "" {
		return s.PropertyName
	}
	return s.Shisya + "_" + s.Danchi
}

// Availability is the part of the UR search response the monitor relies on
type Availability struct {
	Count             *int              `json:"count"`
	RentLow           *int              `json:"rent_low,omitempty"`
	RentHigh          *int              `json:"rent_high,omitempty"`
	RentLowCommonFee  *int              `json:"rent_low_commonfee,omitempty"`
	RentHighCommonFee *int              `json:"rent_high_commonfee,omitempty"`
	Rooms             []json.RawMessage `json:"room,omitempty"`
}

// Vacancies returns the vacancy count, zero when absent
func (a *Availability) Vacancies() int {
	if a == nil || a.Count == nil {
		return 0
	}
	return *a.Count
}
