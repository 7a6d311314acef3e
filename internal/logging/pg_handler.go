package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	batchSize     = 50
	flushInterval = 5 * time.Second
)

// BatchWriter persists a batch of log entries.
type BatchWriter func(entries []models.SystemLog) error

// PGHandler is an slog.Handler that batches ERROR+ records into system_logs.
type PGHandler struct {
	write BatchWriter
	attrs []slog.Attr
	state *pgState
}

type pgState struct {
	mu     sync.Mutex
	buffer []models.SystemLog
	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
	stop   sync.Once
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	return NewBatchHandler(func(entries []models.SystemLog) error {
		return db.CreateInBatches(entries, batchSize).Error
	}, flushInterval)
}

// NewBatchHandler buffers records and hands them to write every interval or
// whenever a full batch is waiting.
func NewBatchHandler(write BatchWriter, interval time.Duration) *PGHandler {
	st := &pgState{
		buffer: make([]models.SystemLog, 0, batchSize),
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	h := &PGHandler{write: write, state: st}
	st.wg.Add(1)
	go h.flushLoop()
	return h
}

func (h *PGHandler) flushLoop() {
	defer h.state.wg.Done()
	for {
		select {
		case <-h.state.ticker.C:
			h.flush()
		case <-h.state.done:
			h.flush()
			return
		}
	}
}

func (h *PGHandler) flush() {
	st := h.state
	st.mu.Lock()
	if len(st.buffer) == 0 {
		st.mu.Unlock()
		return
	}
	batch := st.buffer
	st.buffer = make([]models.SystemLog, 0, batchSize)
	st.mu.Unlock()

	// Warn stays below this handler's threshold so the failure cannot loop back.
	if err := h.write(batch); err != nil {
		slog.Warn("failed to flush system logs", "error", err, "count", len(batch))
	}
}

// Stop flushes whatever is buffered and waits for the flush loop to exit.
func (h *PGHandler) Stop() {
	h.state.stop.Do(func() {
		h.state.ticker.Stop()
		close(h.state.done)
	})
	h.state.wg.Wait()
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]any)
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "claim_id":
			s := a.Value.String()
			entry.ClaimID = &s
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		case "latency_ms":
			switch v := a.Value.Any().(type) {
			case float64:
				entry.LatencyMs = int(math.Round(v))
			case int64:
				entry.LatencyMs = int(v)
			}
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	st := h.state
	st.mu.Lock()
	st.buffer = append(st.buffer, entry)
	needFlush := len(st.buffer) >= batchSize
	st.mu.Unlock()

	if needFlush {
		go h.flush()
	}
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{write: h.write, attrs: merged, state: h.state}
}

func (h *PGHandler) WithGroup(string) slog.Handler {
	return h
}
