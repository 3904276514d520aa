package fakecall

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// ExecPlayer loops the ringtone through an external player command,
// e.g. "mpv --loop --no-video"
type ExecPlayer struct {
	mu      sync.Mutex
	command string
	current *exec.Cmd
}

func NewExecPlayer(command string) *ExecPlayer {
	return &ExecPlayer{command: command}
}

func (player *ExecPlayer) PlayLoop(url string) error {
	player.mu.Lock()
	defer player.mu.Unlock()

	if player.command == "" {
		return fmt.Errorf("no ringtone player configured")
	}

	player.stopLocked()

	parts := strings.Fields(player.command)
	cmd := exec.Command(parts[0], append(parts[1:], url)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("unable to start ringtone player: %v", err)
	}

	player.current = cmd
	go cmd.Wait()

	return nil
}

func (player *ExecPlayer) Stop() {
	player.mu.Lock()
	defer player.mu.Unlock()

	player.stopLocked()
}

func (player *ExecPlayer) stopLocked() {
	if player.current != nil && player.current.Process != nil {
		player.current.Process.Kill()
	}
	player.current = nil
}
