package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/models"
	"github.com/vewake/tle-assignment/internal/service"
	"github.com/vewake/tle-assignment/internal/worker/queue"
)

// SyncWorker runs a sync pass for every sync.requested message. Messages
// are handled one by one; a request that arrives while a pass is running is
// acknowledged and dropped.
type SyncWorker interface {
	Start(ctx context.Context) error
	Stop() error
	Stats() WorkerStats
}

type WorkerStats struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type syncWorker struct {
	consumer    queue.Consumer
	syncService service.SyncService
	logger      zerolog.Logger

	wg         sync.WaitGroup
	statsMutex sync.Mutex
	stats      WorkerStats
}

func NewSyncWorker(consumer queue.Consumer, syncService service.SyncService, logger zerolog.Logger) SyncWorker {
	return &syncWorker{
		consumer:    consumer,
		syncService: syncService,
		logger:      logger,
	}
}

func (w *syncWorker) Start(ctx context.Context) error {
	msgs, err := w.consumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming sync requests: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.processMessages(ctx, msgs)
	}()

	w.logger.Info().Msg("Sync worker started")
	return nil
}

// Stop waits for the message loop to exit. The caller cancels the context
// passed to Start first.
func (w *syncWorker) Stop() error {
	if err := w.consumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close sync consumer")
	}

	w.wg.Wait()

	stats := w.Stats()
	w.logger.Info().
		Int("processed", stats.Processed).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Msg("Sync worker stopped")

	return nil
}

func (w *syncWorker) Stats() WorkerStats {
	w.statsMutex.Lock()
	defer w.statsMutex.Unlock()
	return w.stats
}

func (w *syncWorker) processMessages(ctx context.Context, msgs <-chan queue.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			w.handle(ctx, msg)
		}
	}
}

func (w *syncWorker) handle(ctx context.Context, msg queue.Message) {
	var event models.SyncRequestedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		w.logger.Error().Err(err).Msg("Malformed sync request")
		w.finish(msg, false, &w.stats.Failed)
		return
	}

	w.logger.Info().Str("requested_by", event.RequestedBy).Msg("Sync requested")

	_, err := w.syncService.RunSync(ctx)
	switch {
	case err == nil:
		w.finish(msg, true, &w.stats.Processed)
	case errors.Is(err, service.ErrSyncInProgress):
		w.logger.Info().Msg("Sync already running, dropping request")
		w.finish(msg, true, &w.stats.Skipped)
	default:
		w.logger.Error().Err(err).Msg("Sync pass failed")
		w.finish(msg, false, &w.stats.Failed)
	}
}

func (w *syncWorker) finish(msg queue.Message, ack bool, counter *int) {
	w.statsMutex.Lock()
	*counter++
	w.statsMutex.Unlock()

	var err error
	if ack {
		err = msg.Ack(false)
	} else {
		err = msg.Nack(false, false)
	}
	if err != nil {
		w.logger.Error().Err(err).Bool("ack", ack).Msg("Failed to settle sync request")
	}
}
