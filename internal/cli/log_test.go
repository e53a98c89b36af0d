package cli

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("loaded graph", "vertices", 10)

	line := strings.TrimSpace(buf.String())
	if !regexp.MustCompile(`^\d\d:\d\d:\d\d\.\d\d `).MatchString(line) {
		t.Errorf("log line %q does not start with an HH:MM:SS.cc timestamp", line)
	}
	for _, want := range []string{"loaded graph", "vertices", "10"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level log.Level
		debug bool
		info  bool
	}{
		{log.DebugLevel, true, true},
		{log.InfoLevel, false, true},
		{log.WarnLevel, false, false},
	}
	for _, tt := range tests {
		var debug, info bytes.Buffer
		newLogger(&debug, tt.level).Debug("planned query")
		newLogger(&info, tt.level).Info("prepared estimator")

		if got := debug.Len() > 0; got != tt.debug {
			t.Errorf("level %s: debug logged = %v, want %v", tt.level, got, tt.debug)
		}
		if got := info.Len() > 0; got != tt.info {
			t.Errorf("level %s: info logged = %v, want %v", tt.level, got, tt.info)
		}
	}
}

func TestProgressElapsed(t *testing.T) {
	prog := newProgress(newLogger(&bytes.Buffer{}, log.InfoLevel))
	time.Sleep(2 * time.Millisecond)

	got := prog.elapsed()
	if got < 2*time.Millisecond {
		t.Errorf("elapsed() = %s, want at least 2ms", got)
	}
	if got%time.Microsecond != 0 {
		t.Errorf("elapsed() = %s, want microsecond precision", got)
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.start = time.Now().Add(-1500 * time.Millisecond)

	prog.done("Evaluated workload")

	if !regexp.MustCompile(`Evaluated workload \(1\.5\d*s\)`).MatchString(buf.String()) {
		t.Errorf("done() output = %q, want message with elapsed time in seconds", buf.String())
	}
}
