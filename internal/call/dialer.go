package call

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Dialer hands a phone number to whatever on the host can place calls.
type Dialer interface {
	Dial(phoneNumber string) error
}

type NoopDialer struct{}

func (NoopDialer) Dial(string) error { return nil }

// ExecDialer opens a tel: URL with the platform opener. Whether anything
// answers it depends on the desktop; a missing handler surfaces as an error
// so the screen can tell the user the call could not be placed.
type ExecDialer struct{}

func (ExecDialer) Dial(phoneNumber string) error {
	if phoneNumber == "" {
		return fmt.Errorf("call: no phone number to dial")
	}
	url := "tel:" + phoneNumber
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", url).Run()
	case "darwin":
		return exec.Command("open", url).Run()
	default:
		return fmt.Errorf("call: no dialer available on %s", runtime.GOOS)
	}
}
