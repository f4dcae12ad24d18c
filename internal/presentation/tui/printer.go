package tui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/aretw0/websession/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Profile returns the color profile for f: no colors unless f is a terminal.
func Profile(f *os.File) termenv.Profile {
	if !term.IsTerminal(int(f.Fd())) {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// EventPrinter writes one line per session event.
// Safe for concurrent use; expire events arrive from timer goroutines.
type EventPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	profile termenv.Profile
	now     func() time.Time
}

// NewEventPrinter creates a printer writing to out with the given color profile.
func NewEventPrinter(out io.Writer, profile termenv.Profile) *EventPrinter {
	return &EventPrinter{out: out, profile: profile, now: time.Now}
}

// Change prints a change event.
func (p *EventPrinter) Change(e *domain.ChangeEvent) {
	label, color := "CHANGE", "#a78bfa"
	switch {
	case e.Ended:
		label, color = "ENDED", "#fb7185"
	case e.NewData.IsAuthenticated() && !e.OldData.IsAuthenticated():
		label, color = "LOGIN", "#4ade80"
	case !e.NewData.IsAuthenticated() && e.OldData.IsAuthenticated():
		label, color = "LOGOUT", "#fb7185"
	}

	detail := "anonymous"
	if id, ok := e.NewData.AccountID(); ok {
		detail = "account=" + id
	}
	if keys := domain.ChangedKeys(e.OldData, e.NewData); len(keys) > 0 {
		detail += fmt.Sprintf(" changed=%v", keys)
	}
	p.line(label, color, detail)
}

// Expire prints an expire event.
func (p *EventPrinter) Expire(e *domain.ExpireEvent) {
	p.line("EXPIRE", "#fbbf24", fmt.Sprintf("key=%s ttl=%s", e.Key, e.TTL))
}

// Error prints a failed refresh.
func (p *EventPrinter) Error(err error) {
	p.line("ERROR", "#f87171", err.Error())
}

func (p *EventPrinter) line(label, color, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tag := p.profile.String(fmt.Sprintf("%-6s", label)).Foreground(p.profile.Color(color)).Bold()
	fmt.Fprintf(p.out, "%s %s %s\n", p.now().Format(time.TimeOnly), tag, detail)
}
