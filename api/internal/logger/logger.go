package logger

import (
	"log"
	"os"
	"strings"
	"sync"
)

var (
	debugOnce sync.Once
	debug     bool
)

// Enabled reports whether DEBUG is set to 1, true or yes. Read once per process.
func Enabled() bool {
	debugOnce.Do(func() {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("DEBUG"))) {
		case "1", "true", "yes":
			debug = true
		}
	})
	return debug
}

func DebugLog(format string, args ...any) {
	if Enabled() {
		log.Printf("[DEBUG] "+format, args...)
	}
}
