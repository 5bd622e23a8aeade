package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// timeFormat is the timestamp layout of every record.
const timeFormat = "2006-01-02 15:04:05"

// nameKey is the attribute that Named stores the logger name under.
// Handlers lift it into the name column instead of printing it as key=value.
const nameKey = "logger"

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Level slog.Leveler
	Color bool
	Name  string
}

// Handler writes one line per record:
//
//	2006-01-02 15:04:05 [I] name : message key=value
type Handler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	color  bool
	name   string
	prefix string
	attrs  []byte
}

// NewHandler creates a Handler writing to w.
func NewHandler(w io.Writer, opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
		color: opts.Color,
		name:  opts.Name,
	}
}

// Enabled reports whether records at level are written.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes r.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	if !r.Time.IsZero() {
		buf.WriteString(r.Time.Format(timeFormat))
		buf.WriteByte(' ')
	}
	buf.WriteString(h.levelTag(r.Level))
	buf.WriteByte(' ')
	if h.name != "" {
		buf.WriteString(h.name)
		buf.WriteString(" : ")
	}
	buf.WriteString(r.Message)
	buf.Write(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// WithAttrs returns a Handler that prints attrs on every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := h.clone()
	for _, a := range attrs {
		if a.Key == nameKey && h.prefix == "" {
			h2.name = a.Value.String()
			continue
		}
		var buf bytes.Buffer
		appendAttr(&buf, h.prefix, a)
		h2.attrs = append(h2.attrs, buf.Bytes()...)
	}
	return h2
}

// WithGroup returns a Handler that qualifies later keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.prefix = h.prefix + name + "."
	return h2
}

func (h *Handler) clone() *Handler {
	h2 := *h
	h2.attrs = append([]byte(nil), h.attrs...)
	return &h2
}

func (h *Handler) levelTag(level slog.Level) string {
	var (
		letter string
		c      *color.Color
	)
	switch {
	case level < slog.LevelInfo:
		letter, c = "D", color.New(color.FgGreen)
	case level < slog.LevelWarn:
		letter = "I"
	case level < slog.LevelError:
		letter, c = "W", color.New(color.FgYellow)
	case level < LevelCritical:
		letter, c = "E", color.New(color.FgRed)
	default:
		letter, c = "C", color.New(color.FgRed, color.Bold)
	}

	tag := "[" + letter + "]"
	if c == nil || !h.color {
		return tag
	}
	c.EnableColor()
	return c.Sprint(tag)
}

func appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(buf, group, ga)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteByte('=')
	v := a.Value.String()
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		v = strconv.Quote(v)
	}
	buf.WriteString(v)
}

// fanout sends every record to all handlers that accept its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
