// Package log configures the apex/log default logger for the gomemo CLI.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// InitLogger installs a Handler writing to stdout and sets the level from
// the GOMEMO_LOG env variable, ERROR when unset.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("GOMEMO_LOG"))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(NewHandler(os.Stdout))
	l, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		log.SetLevel(log.ErrorLevel)
		log.WithError(err).Errorf("ignoring GOMEMO_LOG=%q", level)
		return
	}
	log.SetLevel(l)
}

// Handler writes one line per entry: timestamp, level initial, message and
// the entry's fields sorted by name.
type Handler struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewHandler returns a Handler writing to w.
func NewHandler(w io.Writer) *Handler {
	return &Handler{w: w, now: time.Now}
}

// HandleLog implements the log.Handler interface.
func (h *Handler) HandleLog(e *log.Entry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", h.now().Format("2006-01-02 15:04:05"), strings.ToUpper(e.Level.String()), e.Message)
	for _, f := range e.Fields.Names() {
		fmt.Fprintf(&b, " %s=%v", f, e.Fields.Get(f))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}
