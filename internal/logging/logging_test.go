package logging

import (
	"testing"

	log "github.com/mgutz/logxi/v1"
)

func TestNewReturnsSameLogger(t *testing.T) {
	if New("logging-a") != New("logging-a") {
		t.Error("New created a second logger for the same name")
	}
}

func TestSetLevelReachesEveryLogger(t *testing.T) {
	a, b := New("logging-b"), New("logging-c")

	SetLevel(log.LevelDebug)
	if !a.IsDebug() || !b.IsDebug() {
		t.Errorf("after SetLevel(debug): a=%v b=%v", a.IsDebug(), b.IsDebug())
	}

	SetLevel(log.LevelWarn)
	if a.IsDebug() || b.IsDebug() || a.IsInfo() {
		t.Errorf("after SetLevel(warn): a debug=%v info=%v b debug=%v", a.IsDebug(), a.IsInfo(), b.IsDebug())
	}
	if !a.IsWarn() {
		t.Error("warn disabled at warn level")
	}
}
