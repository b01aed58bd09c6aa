package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestDiscardIsSilent(t *testing.T) {
	l := Discard()
	if l.IsLevelEnabled(logrus.ErrorLevel) {
		t.Fatal("discard logger should not enable error level")
	}
}

func TestNewVerbose(t *testing.T) {
	if got := New(true).GetLevel(); got != logrus.DebugLevel {
		t.Fatalf("verbose level = %v, want debug", got)
	}
	if got := New(false).GetLevel(); got != logrus.InfoLevel {
		t.Fatalf("default level = %v, want info", got)
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}

	l := logrus.New()
	if OrDiscard(l) != l {
		t.Fatal("OrDiscard should return the given logger")
	}
}
