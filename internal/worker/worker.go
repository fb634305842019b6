// Package worker identifies artworks in the background. Artworks are created
// in pending_identification status; the worker claims them one at a time and
// runs the identification pipeline, which writes the terminal status.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/artseen/artseen/internal/model"
)

// Processor runs the identification pipeline for a single artwork.
type Processor interface {
	Process(ctx context.Context, artwork *model.Artwork) error
}

// ArtworkClaimer provides atomic claim operations.
type ArtworkClaimer interface {
	ClaimNextPending(ctx context.Context) (*model.Artwork, error)
}

// Worker polls for pending artworks and runs the pipeline.
type Worker struct {
	claimer   ArtworkClaimer
	processor Processor
	interval  time.Duration
}

// New creates a new Worker.
func New(claimer ArtworkClaimer, processor Processor, interval time.Duration) *Worker {
	return &Worker{claimer: claimer, processor: processor, interval: interval}
}

// Start begins the polling loop. It blocks until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("worker started", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped")
			return
		default:
		}

		artwork, err := w.claimer.ClaimNextPending(ctx)
		if err != nil {
			slog.Error("worker claim error", "error", err)
			w.sleep(ctx)
			continue
		}
		if artwork == nil {
			w.sleep(ctx)
			continue
		}

		slog.Info("identifying claimed artwork", "artwork_id", artwork.ID, "museum", artwork.MuseumName)
		// The pipeline owns the terminal status writes; an error here is a
		// read failure after persistence and is only worth logging.
		if err := w.processor.Process(ctx, artwork); err != nil {
			slog.Error("identification failed", "artwork_id", artwork.ID, "error", err)
		}
	}
}

func (w *Worker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.interval):
	}
}
