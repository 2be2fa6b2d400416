package shared

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ParsePeriod reads the optional ?period=YYYY-MM query parameter,
// defaulting to the current month.
func ParsePeriod(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("period"))
	if raw == "" {
		return time.Now().Format("2006-01"), nil
	}
	if _, err := time.Parse("2006-01", raw); err != nil {
		return "", fmt.Errorf("period must use the YYYY-MM format")
	}
	return raw, nil
}
