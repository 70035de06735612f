package auth

import (
	"os/exec"
	"runtime"

	logger "github.com/sirupsen/logrus"
)

// OpenBrowser asks the operating system to open url.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// BrowserNavigator sends the user to a URL. It always logs the target and
// opens the system browser when Open is set.
type BrowserNavigator struct {
	Open bool
	// Launch defaults to OpenBrowser.
	Launch func(url string) error
}

// Navigate logs target and optionally opens it.
func (n BrowserNavigator) Navigate(target string) {
	log := logger.WithField("url", target)
	log.Info("Sign in to continue")
	if !n.Open {
		return
	}
	launch := n.Launch
	if launch == nil {
		launch = OpenBrowser
	}
	if err := launch(target); err != nil {
		log.WithError(err).Warn("could not open browser")
	}
}
