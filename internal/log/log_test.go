package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestHandler_FormatsEntry(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf)
	h.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	logger := &log.Logger{Handler: h, Level: log.DebugLevel}
	logger.WithFields(log.Fields{"waiters": 2, "key": "k"}).Debug("memo: computation fulfilled")

	assert.Equal(t, "2025-01-02 03:04:05 D memo: computation fulfilled key=k waiters=2\n", buf.String())
}

func TestInitLogger_Level(t *testing.T) {
	t.Setenv("GOMEMO_LOG", "debug")
	InitLogger()
	assert.Equal(t, log.DebugLevel, log.Log.(*log.Logger).Level)

	t.Setenv("GOMEMO_LOG", "")
	InitLogger()
	assert.Equal(t, log.ErrorLevel, log.Log.(*log.Logger).Level)
}
