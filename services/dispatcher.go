package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"spotigrab/metrics"
	"spotigrab/types"
)

// Messages for collection-level failures
const (
	MsgInvalidURL       = "invalid url"
	MsgPlaylistNotFound = "playlist not found"
	MsgPlaylistFailed   = "failed to get playlist"
)

// Dispatcher classifies a raw reference and routes it to the track pipeline or the
// batch orchestrator
type Dispatcher struct {
	tracks  TrackRunner
	batches *BatchOrchestrator
	root    string
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher writing single tracks into root
func NewDispatcher(tracks TrackRunner, batches *BatchOrchestrator, root string, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		tracks:  tracks,
		batches: batches,
		root:    root,
		metrics: m,
		logger:  logger,
	}
}

// Dispatch handles one request. The only error returned is ErrInvalidInput; every other
// failure is reported inside the result.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string, progress ProgressFunc) (types.Result, error) {
	ref := Classify(raw)
	d.metrics.ObserveRequest(string(ref.Kind))

	switch ref.Kind {
	case types.KindTrack:
		outcome := d.tracks.Run(ctx, ref, d.root)
		if progress != nil {
			progress(1, 1, outcome)
		}
		return types.Result{Kind: ref.Kind, Track: &outcome}, nil

	case types.KindCollection:
		batch, err := d.batches.Run(ctx, ref, progress)
		if err != nil {
			d.logger.Warn("playlist failed", zap.String("reference", ref.Raw), zap.Error(err))
			batch = &types.BatchOutcome{
				Status:  types.StatusError,
				Message: batchErrorMessage(err),
				Tracks:  []types.TrackOutcome{},
			}
		}
		return types.Result{Kind: ref.Kind, Batch: batch}, nil

	default:
		return types.Result{Kind: types.KindInvalid}, fmt.Errorf("%w: %q", ErrInvalidInput, raw)
	}
}

func batchErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return MsgPlaylistNotFound
	case errors.Is(err, ErrProvider):
		return MsgPlaylistFailed
	default:
		return err.Error()
	}
}
