package httptransport

import (
	"context"
	"net/http"
	"time"

	"ember/internal/platform/middleware"
	"ember/internal/tracing/consent"
	"ember/internal/tracing/dispatch"
)

// SettingsService defines the interface for tracing settings.
type SettingsService interface {
	Get(ctx context.Context, userID string) (*consent.Settings, error)
	Update(ctx context.Context, settings *consent.Settings) (*consent.Settings, error)
}

// InboxService defines the interface for the recipient-facing inbox.
type InboxService interface {
	ListUnread(ctx context.Context, userID string) ([]*dispatch.ExposureNotification, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int, error)
}

type settingsPayload struct {
	OptedIn                    bool `json:"opted_in"`
	ScreenReminderDays         int  `json:"screen_reminder_days"`
	ScreenReminderPartnerCount int  `json:"screen_reminder_partner_count"`
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsPayload{
		OptedIn:                    settings.OptedIn,
		ScreenReminderDays:         settings.ScreenReminderDays,
		ScreenReminderPartnerCount: settings.ScreenReminderPartnerCount,
	})
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsPayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.settings.Update(r.Context(), &consent.Settings{
		UserID:                     middleware.GetUserID(r.Context()),
		OptedIn:                    req.OptedIn,
		ScreenReminderDays:         req.ScreenReminderDays,
		ScreenReminderPartnerCount: req.ScreenReminderPartnerCount,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsPayload{
		OptedIn:                    updated.OptedIn,
		ScreenReminderDays:         updated.ScreenReminderDays,
		ScreenReminderPartnerCount: updated.ScreenReminderPartnerCount,
	})
}

// inboxEntry is the recipient-facing shape. It deliberately omits the source
// report id and any recipient-routing internals: the client gets the STI
// types, a coarse time reference, and nothing that could identify who
// reported.
type inboxEntry struct {
	ID         string    `json:"id"`
	STITypes   []string  `json:"sti_types"`
	TimeHint   string    `json:"time_hint"`
	ReceivedAt time.Time `json:"received_at"`
}

func (h *Handler) handleListInbox(w http.ResponseWriter, r *http.Request) {
	rows, err := h.inbox.ListUnread(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]inboxEntry, 0, len(rows))
	for _, n := range rows {
		out = append(out, inboxEntry{
			ID:         n.ID,
			STITypes:   n.STITypes,
			TimeHint:   "a recent partner",
			ReceivedAt: n.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": out})
}

type markReadRequest struct {
	IDs []string `json:"ids"`
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	marked, err := h.inbox.MarkRead(r.Context(), middleware.GetUserID(r.Context()), req.IDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": marked})
}
