package impulse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	nopLogger
	warnings []string
	infos    []string
}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Infof(format string, args ...any) {
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func TestRateLimitedLogger_SuppressesAfterLimit(t *testing.T) {
	rec := &recordingLogger{}
	l := newRateLimitedLogger(rec)

	for i := 0; i < 15; i++ {
		l.Warnf("warning %d", i)
	}
	l.Infof("still here")

	assert.Len(t, rec.warnings, maxWarnings)
	assert.Equal(t, "warning 0", rec.warnings[0])
	last := rec.warnings[maxWarnings-1]
	assert.True(t, strings.HasSuffix(last, "(further warnings suppressed)"), last)
	assert.Equal(t, 15, l.Warnings())
	assert.Equal(t, []string{"still here"}, rec.infos)
}

func TestDefaultLogger_Prefix(t *testing.T) {
	l := NewDefaultLogger("impulse", false)
	assert.False(t, l.DebugEnabled())
	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())

	assert.Equal(t, "[impulse] WARN: x=1", l.prefixf("WARN", "x=%d", 1))
	assert.Equal(t, "INFO: y", NewDefaultLogger("", false).prefixf("INFO", "y"))
}

func TestWorld_SetLoggerRoutesNarrowphaseWarnings(t *testing.T) {
	w := NewWorld()
	rec := &recordingLogger{}
	w.SetLogger(rec)

	w.Narrowphase.warner.Warnf("unsupported pair")
	assert.Equal(t, []string{"unsupported pair"}, rec.warnings)
}
