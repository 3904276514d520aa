package alert

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OSLauncher opens hand-off URLs with the platform's default opener,
// so the composed whatsapp/mailto links land in the external client
type OSLauncher struct{}

func (OSLauncher) Open(handOffURL string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", handOffURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", handOffURL)
	default:
		cmd = exec.Command("xdg-open", handOffURL)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("unable to open %v: %v", handOffURL, err)
	}

	// The opener is fire & forget - reap it in the background
	go cmd.Wait()

	return nil
}
