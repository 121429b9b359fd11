package dispatch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// All recipient-facing content is built here and only here, so the anonymity
// invariant has a single enforcement point: a payload carries the STI types
// and a relative time phrase, never the reporter's identity or the report id.
// This must hold for any channel added later, not just app and sms.

const timeHint = "a recent partner"

// AppPayload is the opaque JSON pushed on the app channel.
type AppPayload struct {
	Type     string   `json:"type"`
	STITypes []string `json:"sti_types"`
	TimeHint string   `json:"time_hint"`
	Message  string   `json:"message"`
}

// BuildAppPayload serializes the identity-free app notification body.
func BuildAppPayload(stiTypes []string) ([]byte, error) {
	payload := AppPayload{
		Type:     "exposure_alert",
		STITypes: stiTypes,
		TimeHint: timeHint,
		Message:  alertMessage(stiTypes),
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal app payload: %w", err)
	}
	return out, nil
}

// SMSText renders the identity-free text for the sms channel.
func SMSText(stiTypes []string) string {
	return alertMessage(stiTypes) + " This message was sent anonymously via Ember."
}

func alertMessage(stiTypes []string) string {
	return fmt.Sprintf(
		"%s of yours has tested positive for %s. You may have been exposed - we recommend getting tested.",
		strings.ToUpper(timeHint[:1])+timeHint[1:],
		humanList(stiTypes),
	)
}

func humanList(items []string) string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		cleaned = append(cleaned, strings.ReplaceAll(item, "_", " "))
	}
	switch len(cleaned) {
	case 0:
		return "a sexually transmitted infection"
	case 1:
		return cleaned[0]
	default:
		return strings.Join(cleaned[:len(cleaned)-1], ", ") + " and " + cleaned[len(cleaned)-1]
	}
}
