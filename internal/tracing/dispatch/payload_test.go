package dispatch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAppPayload(t *testing.T) {
	out, err := BuildAppPayload([]string{"chlamydia", "hepatitis_b"})
	require.NoError(t, err)

	var payload AppPayload
	require.NoError(t, json.Unmarshal(out, &payload))
	assert.Equal(t, "exposure_alert", payload.Type)
	assert.Equal(t, []string{"chlamydia", "hepatitis_b"}, payload.STITypes)
	assert.Equal(t, "a recent partner", payload.TimeHint)
	assert.Contains(t, payload.Message, "hepatitis b")
	assert.Contains(t, payload.Message, "getting tested")
}

func TestSMSText(t *testing.T) {
	text := SMSText([]string{"hiv"})
	assert.Contains(t, text, "A recent partner of yours has tested positive for hiv")
	assert.Contains(t, text, "sent anonymously via Ember")
}

func TestAlertMessageList(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		want  string
	}{
		{"empty falls back to generic phrase", nil, "a sexually transmitted infection"},
		{"single type", []string{"syphilis"}, "positive for syphilis"},
		{"two types joined with and", []string{"chlamydia", "gonorrhea"}, "chlamydia and gonorrhea"},
		{"three types use commas", []string{"chlamydia", "gonorrhea", "hiv"}, "chlamydia, gonorrhea and hiv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, alertMessage(tt.types), tt.want)
		})
	}
}
