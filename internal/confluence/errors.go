package confluence

import "fmt"

// StatusError is returned when Confluence answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status != "" {
		return fmt.Sprintf("confluence request %s failed: %s", e.URL, e.Status)
	}
	return fmt.Sprintf("confluence request %s failed: %d", e.URL, e.StatusCode)
}
