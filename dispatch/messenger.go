package dispatch

import (
	"net/url"
	"os/exec"
	"runtime"
)

// ComposerMessenger opens the platform messaging application through an
// sms: URI. The user still has to press send; nothing leaves the device
// silently.
type ComposerMessenger struct {
	opener string
}

var _ Messenger = (*ComposerMessenger)(nil)

// NewComposerMessenger returns a Messenger using the platform URI opener.
func NewComposerMessenger() *ComposerMessenger {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	return &ComposerMessenger{opener: opener}
}

func (m *ComposerMessenger) Available() bool {
	_, err := exec.LookPath(m.opener)
	return err == nil
}

func (m *ComposerMessenger) Compose(number, body string) (bool, error) {
	uri := "sms:" + number + "?body=" + url.QueryEscape(body)
	if err := exec.Command(m.opener, uri).Run(); err != nil {
		return false, err
	}
	return true, nil
}
