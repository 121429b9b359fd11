package dispatch

import (
	"time"

	"ember/internal/encounter"
)

// Channel is the delivery mechanism for one exposure notification.
type Channel string

const (
	// ChannelApp is an in-app notification to an opted-in platform member.
	ChannelApp Channel = "app"
	// ChannelSMS is a text to a manual contact with a phone number on file.
	ChannelSMS Channel = "sms"
	// ChannelManualRequired means no automated channel exists; the reporter
	// is asked to reach out personally.
	ChannelManualRequired Channel = "manual_required"
)

// ExposureNotification is the anonymized record of one warning. The recipient
// reference exists for delivery routing and inbox authorization only; neither
// the row nor any delivered payload identifies the reporting user.
//
// At most one row exists per (recipient, source report); the stores enforce
// this so a re-dispatched report can never double-notify.
//
// State machine: sms rows are created undelivered, before the gateway call,
// and flip to delivered on ack; app rows additionally transition to read, a
// terminal state.
type ExposureNotification struct {
	ID             string
	Recipient      encounter.PartnerRef
	STITypes       []string
	SourceReportID string
	Channel        Channel
	Delivered      bool
	ReadAt         *time.Time
	CreatedAt      time.Time
}

// FollowUp is one partner the reporter must contact personally, with
// whatever hint is available. LastMetAt is not persisted on the notification
// row, so entries rebuilt for an idempotent replay carry name and phone only.
type FollowUp struct {
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	LastMetAt time.Time `json:"last_met_at,omitempty"`
}

// DispatchResult summarizes one dispatch run for the reporter.
type DispatchResult struct {
	AppNotified    int        `json:"app_notified"`
	SMSSent        int        `json:"sms_sent"`
	ManualRequired []FollowUp `json:"manual_required"`
	// Unreachable lists anonymous ledger labels that cannot be notified at
	// all, surfaced for transparency. Not persisted; empty on idempotent
	// replays.
	Unreachable []string `json:"unreachable,omitempty"`
}
