package views

import (
	"fmt"
	"strings"
)

type AuthPanelData struct {
	Mode         string
	NameView     string
	EmailView    string
	PasswordView string
	ErrorText    string
	Busy         bool
}

type HomePanelData struct {
	ListView    string
	Count       int
	FromCache   bool
	SpinnerView string
	Refreshing  bool
	PaletteView string
}

type ReminderFormData struct {
	NameView        string
	PhoneView       string
	WhenView        string
	DescriptionView string
	ErrorText       string
	Busy            bool
}

type SlideData struct {
	Label     string
	TrackView string
	Focused   bool
	State     string
}

type CallPanelData struct {
	Name        string
	Phone       string
	Description string
	Ringing     bool
	Resolved    bool
	Action      string
	PulseScale  float64
	Answer      SlideData
	Decline     SlideData
	DialError   string
	Dialing     bool
}

type AccountPanelData struct {
	Name          string
	Email         string
	PlanType      string
	PlanExpiry    string
	ReminderCount int
	ReminderLimit int
	Loading       bool
}

type NotificationBannerData struct {
	Title string
	Body  string
	Key   string
}

func RenderAuthPanel(data AuthPanelData) string {
	var b strings.Builder
	if data.Mode == "signup" {
		b.WriteString("create account:\n")
		b.WriteString(data.NameView + "\n")
	} else {
		b.WriteString("sign in:\n")
	}
	b.WriteString(data.EmailView + "\n")
	b.WriteString(data.PasswordView + "\n")
	if data.Busy {
		b.WriteString("(contacting server...)\n")
	}
	if data.ErrorText != "" {
		b.WriteString("error: " + data.ErrorText + "\n")
	}
	if data.Mode == "signup" {
		b.WriteString("actions: [enter]register [tab]field [ctrl+l]sign-in instead")
	} else {
		b.WriteString("actions: [enter]sign in [tab]field [ctrl+n]create account")
	}
	return strings.TrimSpace(b.String())
}

func RenderHomePanel(data HomePanelData) string {
	var b strings.Builder
	b.WriteString("reminders:\n")
	if data.Refreshing {
		b.WriteString("refresh: " + data.SpinnerView + " fetching\n")
	}
	if data.FromCache {
		b.WriteString("(offline: showing cached reminders)\n")
	}
	b.WriteString(fmt.Sprintf("upcoming: %d\n", data.Count))
	b.WriteString(data.ListView + "\n")
	if data.PaletteView != "" {
		b.WriteString("command: " + data.PaletteView + "\n")
	}
	b.WriteString("actions: [a]add [r]refresh [x]delete [c]call [p]account [/]command [?]help")
	return strings.TrimSpace(b.String())
}

func RenderReminderFormPanel(data ReminderFormData) string {
	var b strings.Builder
	b.WriteString("new reminder:\n")
	b.WriteString(data.NameView + "\n")
	b.WriteString(data.PhoneView + "\n")
	b.WriteString(data.WhenView + "\n")
	b.WriteString("description:\n" + data.DescriptionView + "\n")
	if data.Busy {
		b.WriteString("(saving...)\n")
	}
	if data.ErrorText != "" {
		b.WriteString("error: " + data.ErrorText + "\n")
	}
	b.WriteString("actions: [enter]save [tab]field [esc]back")
	return strings.TrimSpace(b.String())
}

// RenderCallPanel draws the incoming-call screen. The avatar pulse is shown
// as widening brackets around the caller name so the breathing animation
// survives a text terminal.
func RenderCallPanel(data CallPanelData) string {
	var b strings.Builder
	b.WriteString("incoming call:\n")
	b.WriteString(renderPulsedName(data.Name, data.PulseScale) + "\n")
	if data.Phone != "" {
		b.WriteString(fmt.Sprintf("number: %s\n", data.Phone))
	}
	if data.Description != "" {
		b.WriteString(fmt.Sprintf("about: %s\n", data.Description))
	}

	switch {
	case data.Ringing:
		b.WriteString("\nRing... Ring...\n")
	case data.Resolved:
		b.WriteString(fmt.Sprintf("\nresolved: %s\n", data.Action))
		if data.Dialing {
			b.WriteString("placing call...\n")
		}
		if data.DialError != "" {
			b.WriteString("error: could not open dialer: " + data.DialError + "\n")
			b.WriteString("actions: [enter]back\n")
		}
	default:
		b.WriteString("\n" + renderSlide(data.Answer) + "\n")
		b.WriteString(renderSlide(data.Decline) + "\n")
		b.WriteString("actions: [left/right]drag [tab]switch [enter]release [d]dismiss\n")
	}
	return strings.TrimSpace(b.String())
}

func renderPulsedName(name string, scale float64) string {
	depth := int((scale - 1.0) * 20)
	if depth < 0 {
		depth = 0
	}
	if depth > 4 {
		depth = 4
	}
	pad := strings.Repeat("(", depth+1) + " "
	return pad + name + " " + strings.Repeat(")", depth+1)
}

func renderSlide(data SlideData) string {
	cursor := " "
	if data.Focused {
		cursor = ">"
	}
	return fmt.Sprintf("%s %s %s [%s]", cursor, data.Label, data.TrackView, data.State)
}

func RenderAccountPanel(data AccountPanelData) string {
	var b strings.Builder
	b.WriteString("account:\n")
	if data.Loading {
		b.WriteString("(loading plan status...)\n")
	}
	b.WriteString(fmt.Sprintf("name: %s\n", data.Name))
	b.WriteString(fmt.Sprintf("email: %s\n", data.Email))
	b.WriteString(fmt.Sprintf("plan: %s\n", data.PlanType))
	if data.PlanExpiry != "" {
		b.WriteString(fmt.Sprintf("expires: %s\n", data.PlanExpiry))
	}
	if data.ReminderLimit > 0 {
		b.WriteString(fmt.Sprintf("reminders used: %d of %d\n", data.ReminderCount, data.ReminderLimit))
	} else {
		b.WriteString(fmt.Sprintf("reminders used: %d (unlimited)\n", data.ReminderCount))
	}
	b.WriteString("actions: [L]logout [esc]back")
	return strings.TrimSpace(b.String())
}

func RenderNotificationBanner(data NotificationBannerData) string {
	if data.Title == "" {
		return ""
	}
	return fmt.Sprintf("%s | %s | press [%s] to open", data.Title, data.Body, data.Key)
}
