package httptransport

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"ember/internal/jwt"
	"ember/internal/tracing/consent"
	"ember/internal/transport/http/mocks"
	"ember/pkg/testutil"
)

// RouterSuite-style checks exercising the full middleware chain with real
// token validation.
func TestRouterAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokens := jwt.NewService("test-signing-key", "ember")
	mockSettings := mocks.NewMockSettingsService(ctrl)

	h := NewHandler(discardLogger(), nil, nil, nil, mockSettings, nil, tokens)
	router := NewRouter(h)

	t.Run("missing token rejected", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/tracing/settings")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/tracing/settings")
		req.Header.Set("Authorization", "Bearer not-a-token")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		token, err := tokens.GenerateToken("user123", -time.Minute)
		require.NoError(t, err)

		req := testutil.NewRequest(t, http.MethodGet, "/tracing/settings")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("valid token reaches the handler as its subject", func(t *testing.T) {
		mockSettings.EXPECT().
			Get(gomock.Any(), "user123").
			Return(&consent.Settings{UserID: "user123"}, nil)

		token, err := tokens.GenerateToken("user123", time.Hour)
		require.NoError(t, err)

		req := testutil.NewRequest(t, http.MethodGet, "/tracing/settings")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("health endpoint is public", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/healthz")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
	})
}
