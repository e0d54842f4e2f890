package log

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// maxRecords is how many records a TUIHandler retains.
const maxRecords = 20

type buffer struct {
	mu      sync.Mutex
	ch      chan<- tea.Msg
	records []slog.Record
}

// TUIHandler is a slog.Handler that keeps the latest records and forwards
// each one to the TUI as a LogMsg.
type TUIHandler struct {
	slog.Handler
	buf *buffer
}

// NewTUIHandler creates a new TUIHandler. ch may be nil.
func NewTUIHandler(handler slog.Handler, ch chan<- tea.Msg) *TUIHandler {
	return &TUIHandler{
		Handler: handler,
		buf:     &buffer{ch: ch},
	}
}

// Handle stores r, forwards it without blocking and passes it on to the
// wrapped handler.
func (h *TUIHandler) Handle(ctx context.Context, r slog.Record) error {
	h.buf.mu.Lock()
	h.buf.records = append(h.buf.records, r.Clone())
	if n := len(h.buf.records); n > maxRecords {
		h.buf.records = h.buf.records[n-maxRecords:]
	}
	ch := h.buf.ch
	h.buf.mu.Unlock()

	if ch != nil {
		select {
		case ch <- LogMsg(r):
		default:
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *TUIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TUIHandler{Handler: h.Handler.WithAttrs(attrs), buf: h.buf}
}

func (h *TUIHandler) WithGroup(name string) slog.Handler {
	return &TUIHandler{Handler: h.Handler.WithGroup(name), buf: h.buf}
}

// Logs returns the stored log records, oldest first.
func (h *TUIHandler) Logs() []slog.Record {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	return append([]slog.Record(nil), h.buf.records...)
}

// SetOutput sets the output channel for the handler.
func (h *TUIHandler) SetOutput(ch chan<- tea.Msg) {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	h.buf.ch = ch
}

// LogMsg is a tea.Msg that represents a log message.
type LogMsg slog.Record

var defaultHandler *TUIHandler

// Init installs a TUIHandler wrapping handler as the default logger and
// returns that logger.
func Init(handler slog.Handler) *slog.Logger {
	defaultHandler = NewTUIHandler(handler, nil)
	logger := slog.New(defaultHandler)
	slog.SetDefault(logger)
	return logger
}

// SetOutput sets the output channel for the default logger.
func SetOutput(ch chan<- tea.Msg) {
	if defaultHandler != nil {
		defaultHandler.SetOutput(ch)
	}
}

// Logs returns the stored log messages from the default logger.
func Logs() []slog.Record {
	if defaultHandler == nil {
		return nil
	}
	return defaultHandler.Logs()
}
