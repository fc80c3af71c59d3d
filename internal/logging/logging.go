// Package logging hands out the named logxi loggers used across the module
// and keeps track of them so a command line switch can change all of their
// levels at once.
package logging

import (
	"sync"

	log "github.com/mgutz/logxi/v1"
)

var (
	mu      sync.Mutex
	loggers = map[string]log.Logger{}
)

// New returns the logger called name, creating it on first use. Its level
// comes from the LOGXI environment variable until SetLevel is called.
func New(name string) log.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}
	l := log.New(name)
	loggers[name] = l
	return l
}

// SetLevel applies level to every logger created through New.
func SetLevel(level int) {
	mu.Lock()
	defer mu.Unlock()

	for _, l := range loggers {
		l.SetLevel(level)
	}
}
