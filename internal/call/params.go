package call

import "strings"

// UnknownCaller is shown when neither navigation source supplied a name.
const UnknownCaller = "Unknown"

// Params is the canonical navigation contract into the incoming-call screen.
type Params struct {
	ReminderID  string
	NameToCall  string
	PhoneNumber string
	Description string
}

// NormalizeParams maps a raw parameter set into canonical Params. The screen
// is reachable from two sources with differing key casing, notification
// payloads (reminderId, nameToCall, phoneNumber) and list navigation
// (id, name_to_call, phone_number), and both must resolve identically.
// It reports false when no reminder ID is present under either key; such a
// tap is discarded rather than opening a call screen with unknown identity.
func NormalizeParams(raw map[string]string) (Params, bool) {
	p := Params{
		ReminderID:  firstNonEmpty(raw["reminderId"], raw["id"]),
		NameToCall:  firstNonEmpty(raw["nameToCall"], raw["name_to_call"]),
		PhoneNumber: firstNonEmpty(raw["phoneNumber"], raw["phone_number"]),
		Description: raw["description"],
	}
	if p.NameToCall == "" {
		p.NameToCall = UnknownCaller
	}
	if p.ReminderID == "" {
		return Params{}, false
	}
	return p, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
