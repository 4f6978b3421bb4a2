package appconfig

import (
	"fmt"
	"strings"

	"pkt.systems/pslog"
)

// ParseLevel maps a logging.level value onto a pslog level.
func ParseLevel(level string) (pslog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return pslog.TraceLevel, nil
	case "debug":
		return pslog.DebugLevel, nil
	case "", "info":
		return pslog.InfoLevel, nil
	case "warn", "warning":
		return pslog.WarnLevel, nil
	case "error":
		return pslog.ErrorLevel, nil
	default:
		return pslog.InfoLevel, fmt.Errorf("unsupported logging.level %q", level)
	}
}
