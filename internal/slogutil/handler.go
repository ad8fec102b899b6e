// Package slogutil provides the slog handler and logger constructors used by pycalls.
package slogutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RunKey is the attribute key carrying a call diagram run ID. The human
// handler lifts it out of the attribute list and prints it as a short tag.
const RunKey = "run"

// runTagLen is how many characters of a run ID the human format shows.
const runTagLen = 8

// Handler writes one line per record:
//
//	2026-01-02T15:04:05.000 [warn] <1f0c2a9b> Message | unit=pkg.mod leftover=Class.method
//
// String slices are dotted symbol paths throughout pycalls (targets,
// leftovers) and render joined with ".". Values containing spaces, quotes or
// "=" are quoted so paths with spaces stay on one key.
type Handler struct {
	w      io.Writer
	level  slog.Leveler
	runID  string
	prefix string
	attrs  []byte
	mu     *sync.Mutex
}

// NewHandler creates a new human-readable log handler.
func NewHandler(w io.Writer, opts *slog.HandlerOptions) *Handler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &Handler{w: w, level: level, mu: &sync.Mutex{}}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		buf.WriteString(r.Time.Format("2006-01-02T15:04:05.000"))
		buf.WriteByte(' ')
	}
	buf.WriteByte('[')
	buf.WriteString(levelString(r.Level))
	buf.WriteString("] ")

	runID := h.runID
	var attrs bytes.Buffer
	attrs.Write(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix == "" && a.Key == RunKey {
			runID = a.Value.Resolve().String()
			return true
		}
		appendAttr(&attrs, h.prefix, a)
		return true
	})

	if runID != "" {
		buf.WriteByte('<')
		buf.WriteString(shortRunID(runID))
		buf.WriteString("> ")
	}
	buf.WriteString(r.Message)
	if attrs.Len() > 0 {
		buf.WriteString(" |")
		buf.Write(attrs.Bytes())
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := h.clone()
	var buf bytes.Buffer
	buf.Write(h.attrs)
	for _, a := range attrs {
		if h.prefix == "" && a.Key == RunKey {
			h2.runID = a.Value.Resolve().String()
			continue
		}
		appendAttr(&buf, h.prefix, a)
	}
	h2.attrs = buf.Bytes()
	return h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.prefix = h.prefix + name + "."
	return h2
}

func (h *Handler) clone() *Handler {
	return &Handler{
		w:      h.w,
		level:  h.level,
		runID:  h.runID,
		prefix: h.prefix,
		attrs:  h.attrs[:len(h.attrs):len(h.attrs)],
		mu:     h.mu,
	}
}

// appendAttr writes " key=value", flattening inline groups into dotted keys.
func appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			appendAttr(buf, inner, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteByte('=')
	buf.WriteString(formatValue(v))
}

func shortRunID(id string) string {
	if len(id) > runTagLen {
		return id[:runTagLen]
	}
	return id
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "debug"
	case level < slog.LevelWarn:
		return "info"
	case level < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return quoteIfNeeded(v.String())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	}

	switch x := v.Any().(type) {
	case []string:
		if len(x) == 0 {
			return "-"
		}
		return quoteIfNeeded(strings.Join(x, "."))
	case error:
		return quoteIfNeeded(x.Error())
	case fmt.Stringer:
		return quoteIfNeeded(x.String())
	}
	return quoteIfNeeded(fmt.Sprint(v.Any()))
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
