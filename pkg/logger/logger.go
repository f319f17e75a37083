package logger

import (
	"fmt"
	"log"
	"os"
)

// New returns a status logger for interactive commands: lines carry the
// command name as prefix and go to stderr, leaving stdout to the paced
// transcript.
func New(component string) *log.Logger {
	return log.New(os.Stderr, fmt.Sprintf("[%s] ", component), 0)
}
