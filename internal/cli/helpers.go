package cli

import (
	"fmt"
	"strings"

	"github.com/tomato-clock/tomato/internal/daemon"
)

// shortID abbreviates a UUID for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveTaskID matches a full or abbreviated task ID.
func resolveTaskID(d *daemon.Daemon, ref string) (string, error) {
	list, err := d.Tasks.All()
	if err != nil {
		return "", err
	}

	var match string
	for _, t := range list {
		if t.ID == ref {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("task id %q is ambiguous", ref)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no task matches %q", ref)
	}
	return match, nil
}
