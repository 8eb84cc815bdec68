package redisserver

import (
	"context"
	"log/slog"
	"time"

	"github.com/tidwall/resp"

	"github.com/yndnr/shardkv/internal/core/domain"
	"github.com/yndnr/shardkv/internal/frame"
	"github.com/yndnr/shardkv/internal/storage/memory"
	"github.com/yndnr/shardkv/internal/telemetry/logger"
	"github.com/yndnr/shardkv/internal/telemetry/metric"
)

// Command labels for requests that never reached a handler. Unknown names
// share one label so clients cannot grow the metric cardinality.
const (
	commandLabelInvalid = "invalid"
	commandLabelLimited = "rate_limited"
)

// CommandHandler applies parsed commands to the store.
type CommandHandler struct {
	store         *memory.Store
	maxValueBytes int
	metrics       *metric.Registry
	logger        *slog.Logger
}

// NewCommandHandler creates a new CommandHandler. maxValueBytes <= 0
// disables the SET size check.
func NewCommandHandler(store *memory.Store, maxValueBytes int, metrics *metric.Registry, logger *slog.Logger) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandHandler{
		store:         store,
		maxValueBytes: maxValueBytes,
		metrics:       metrics,
		logger:        logger,
	}
}

// Handle executes cmd and returns its reply. closeAfter is set when the
// connection should be closed once the reply is written.
func (h *CommandHandler) Handle(ctx context.Context, cmd frame.Command) (reply resp.Value, closeAfter bool) {
	start := time.Now()
	result := metric.ResultOK

	switch c := cmd.(type) {
	case frame.Get:
		reply = h.handleGet(c)
	case frame.Set:
		reply = h.handleSet(ctx, c)
	case frame.Del:
		reply = frame.Integer(h.store.Delete(c.Keys...))
	case frame.Exists:
		reply = frame.Integer(h.store.Exists(c.Keys...))
	case frame.Ping:
		reply = handlePing(c)
	case frame.DBSize:
		reply = frame.Integer(h.store.Len())
	case frame.Quit:
		reply, closeAfter = frame.OK(), true
	default:
		reply = frame.Error(domain.ErrUnknownCommand.WithDetails("'" + cmd.Name() + "'"))
	}

	if reply.Type() == resp.Error {
		result = metric.ResultError
	}
	h.metrics.ObserveCommand(cmd.Name(), result, time.Since(start))
	return reply, closeAfter
}

func (h *CommandHandler) handleGet(c frame.Get) resp.Value {
	v, ok := h.store.Get(c.Key)
	if !ok {
		return frame.Null()
	}
	return frame.Bulk(v)
}

func (h *CommandHandler) handleSet(ctx context.Context, c frame.Set) resp.Value {
	if h.maxValueBytes > 0 && len(c.Value) > h.maxValueBytes {
		h.logger.Debug("value too large",
			"conn_id", logger.ConnIDFromContext(ctx),
			"key", c.Key,
			"size", len(c.Value),
			"limit", h.maxValueBytes)
		return frame.Error(domain.ErrValueTooLarge)
	}
	h.store.Set(c.Key, c.Value)
	return frame.OK()
}

func handlePing(c frame.Ping) resp.Value {
	if c.Message == nil {
		return resp.SimpleStringValue("PONG")
	}
	return frame.Bulk(c.Message)
}
