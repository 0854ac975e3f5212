package handlers

import (
	"strings"

	plog "github.com/phuslu/log"
	"github.com/ternarybob/arbor/levels"
	"github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"

	"github.com/merxlabs/merx/internal/common"
)

// Log entries queue here before broadcast; beyond this, entries drop.
const wsLogQueueSize = 1000

// WebSocketWriter adapts the log pipeline onto the websocket push
// channel. Entries flow through a buffered channel writer so a slow
// client can never block a logging call.
type WebSocketWriter struct {
	handler  *WebSocketHandler
	writer   writers.IChannelWriter
	minLevel levels.LogLevel
}

// NewWebSocketWriter starts a channel writer that forwards log entries
// at or above the configured minimum level to connected clients.
func NewWebSocketWriter(handler *WebSocketHandler, config models.WriterConfiguration, wsConfig *common.WebSocketConfig) (*WebSocketWriter, error) {
	w := &WebSocketWriter{
		handler:  handler,
		minLevel: levels.InfoLevel,
	}
	if wsConfig != nil {
		w.minLevel = parseLogLevel(wsConfig.MinLevel)
	}

	cw, err := writers.NewChannelWriter(config, wsLogQueueSize, func(entry models.LogEvent) error {
		level := plogToArborLevel(entry.Level)
		if level < w.minLevel {
			return nil
		}
		w.handler.BroadcastLog(mapLevel(level), entry.Message)
		return nil
	})
	if err != nil {
		return nil, err
	}
	cw.Start()

	w.writer = cw
	return w, nil
}

func plogToArborLevel(level plog.Level) levels.LogLevel {
	switch level {
	case plog.ErrorLevel:
		return levels.ErrorLevel
	case plog.WarnLevel:
		return levels.WarnLevel
	case plog.DebugLevel:
		return levels.DebugLevel
	default:
		return levels.InfoLevel
	}
}

func parseLogLevel(level string) levels.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return levels.ErrorLevel
	case "warn", "warning":
		return levels.WarnLevel
	case "debug":
		return levels.DebugLevel
	default:
		return levels.InfoLevel
	}
}

func mapLevel(level levels.LogLevel) string {
	switch level {
	case levels.ErrorLevel:
		return "error"
	case levels.WarnLevel:
		return "warn"
	case levels.DebugLevel:
		return "debug"
	default:
		return "info"
	}
}

// Write feeds a serialized log entry into the queue.
func (w *WebSocketWriter) Write(data []byte) (int, error) {
	return w.writer.Write(data)
}

// WithLevel updates the minimum broadcast level.
func (w *WebSocketWriter) WithLevel(level plog.Level) writers.IWriter {
	w.minLevel = plogToArborLevel(level)
	return w
}

// GetFilePath reports no backing file; this writer is network-bound.
func (w *WebSocketWriter) GetFilePath() string {
	return ""
}

// Close drains the queue and stops the channel writer.
func (w *WebSocketWriter) Close() error {
	return w.writer.Close()
}
