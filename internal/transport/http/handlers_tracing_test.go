package httptransport

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"ember/internal/encounter"
	"ember/internal/tracing/consent"
	"ember/internal/tracing/dispatch"
	"ember/internal/transport/http/mocks"
	"ember/pkg/testutil"
)

//go:generate mockgen -source=handlers_tracing.go -destination=mocks/tracing-mocks.go -package=mocks SettingsService,InboxService

func TestHandleGetSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSettings := mocks.NewMockSettingsService(ctrl)
	mockSettings.EXPECT().
		Get(gomock.Any(), "user123").
		Return(&consent.Settings{UserID: "user123", OptedIn: true, ScreenReminderDays: 90}, nil)

	h := &Handler{logger: discardLogger(), settings: mockSettings}

	req := testutil.NewRequest(t, http.MethodGet, "/tracing/settings")
	req = testutil.WithUserID(req, "user123")

	rr := testutil.DoRequest(http.HandlerFunc(h.handleGetSettings), req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	resp := *testutil.UnmarshalResponse[settingsPayload](t, rr)
	assert.True(t, resp.OptedIn)
	assert.Equal(t, 90, resp.ScreenReminderDays)
}

func TestHandleUpdateSettings_UserComesFromToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSettings := mocks.NewMockSettingsService(ctrl)
	mockSettings.EXPECT().
		Update(gomock.Any(), &consent.Settings{UserID: "user123", OptedIn: true}).
		Return(&consent.Settings{UserID: "user123", OptedIn: true}, nil)

	h := &Handler{logger: discardLogger(), settings: mockSettings}

	// Any user id smuggled into the body is ignored; the authenticated
	// subject is the only settings owner a caller can touch.
	req := testutil.NewJSONRequest(t, http.MethodPut, "/tracing/settings", map[string]any{
		"opted_in": true,
		"user_id":  "victim456",
	})
	req = testutil.WithUserID(req, "user123")

	rr := testutil.DoRequest(http.HandlerFunc(h.handleUpdateSettings), req)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestHandleListInbox_AnonymizedShape(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockInbox := mocks.NewMockInboxService(ctrl)
	mockInbox.EXPECT().
		ListUnread(gomock.Any(), "bob").
		Return([]*dispatch.ExposureNotification{{
			ID:             "n1",
			Recipient:      encounter.PlatformPartner("bob"),
			STITypes:       []string{"chlamydia"},
			SourceReportID: "report-secret-1",
			Channel:        dispatch.ChannelApp,
			Delivered:      true,
			CreatedAt:      time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		}}, nil)

	h := &Handler{logger: discardLogger(), inbox: mockInbox}

	req := testutil.NewRequest(t, http.MethodGet, "/tracing/inbox")
	req = testutil.WithUserID(req, "bob")

	rr := testutil.DoRequest(http.HandlerFunc(h.handleListInbox), req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	body := rr.Body.String()
	assert.Contains(t, body, "chlamydia")
	assert.Contains(t, body, "a recent partner")
	assert.NotContains(t, body, "report-secret-1", "the source report id must never reach a recipient")
}

func TestHandleMarkRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockInbox := mocks.NewMockInboxService(ctrl)
	mockInbox.EXPECT().
		MarkRead(gomock.Any(), "bob", []string{"n1", "n2"}).
		Return(2, nil)

	h := &Handler{logger: discardLogger(), inbox: mockInbox}

	req := testutil.NewJSONRequest(t, http.MethodPost, "/tracing/inbox/read", map[string]any{
		"ids": []string{"n1", "n2"},
	})
	req = testutil.WithUserID(req, "bob")

	rr := testutil.DoRequest(http.HandlerFunc(h.handleMarkRead), req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	resp := *testutil.UnmarshalResponse[map[string]int](t, rr)
	assert.Equal(t, 2, resp["marked"])
}
