package collector

import "strings"

// InitContainerFinder extracts the first init container name from
// `kubectl describe pod` output. It returns "" when none can be found.
type InitContainerFinder func(description string) string

const initContainersHeader = "Init Containers:"

// FirstInitContainer scans for the "Init Containers:" section and returns the
// first following line that ends in a colon, without the colon. The describe
// format is not a stable API; anything unexpected yields "".
func FirstInitContainer(description string) string {
	lines := strings.Split(description, "\n")
	start := -1
	for i, line := range lines {
		if strings.TrimRight(line, " \r") == initContainersHeader {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}

	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, ":") {
			return strings.ReplaceAll(trimmed, ":", "")
		}
	}
	return ""
}
