// Package facade exposes the coordinator as a stateful, observable
// surface: set inputs, read a snapshot, get notified once per
// completed cycle.
package facade

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pricekit/localprice/pkg/currency"
	"github.com/pricekit/localprice/pkg/domain"
	"github.com/pricekit/localprice/pkg/service/convert"
)

// Converter is the coordinator contract the facade drives.
type Converter interface {
	Convert(ctx context.Context, req convert.Request) (*domain.Conversion, error)
}

// Input is the caller-facing input record. Changing any field
// triggers re-evaluation.
type Input struct {
	BasePrice      float64
	BaseCurrency   string
	APIKey         string
	ManualCurrency string
}

// Snapshot is the facade's current state. Err is the typed error from
// the last completed cycle, surfaced unmodified; whether to fall back
// to displaying the original price is the caller's decision.
type Snapshot struct {
	ConvertedPrice float64
	LocalCurrency  currency.Code
	BaseCurrency   currency.Code
	ExchangeRate   float64
	IsLoading      bool
	Err            error
}

// Watcher re-evaluates a conversion whenever its input changes and
// fires the success/error callback exactly once per completed cycle.
// A superseded or closed cycle detaches from the shared in-flight work
// without aborting it and fires no callback.
type Watcher struct {
	converter Converter
	onSuccess func(domain.Conversion)
	onError   func(error)
	logger    *slog.Logger

	mu       sync.Mutex
	input    Input
	hasInput bool
	snap     Snapshot
	gen      uint64
	cancel   context.CancelFunc
}

// New creates a watcher. Callbacks may be nil; a nil logger selects
// slog.Default().
func New(
	converter Converter,
	onSuccess func(domain.Conversion),
	onError func(error),
	logger *slog.Logger,
) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		converter: converter,
		onSuccess: onSuccess,
		onError:   onError,
		logger:    logger,
	}
}

// Set applies a new input record. Identical inputs are a no-op; a
// change supersedes any cycle still in flight and starts a new one.
func (w *Watcher) Set(in Input) {
	w.mu.Lock()
	if w.hasInput && in == w.input {
		w.mu.Unlock()
		return
	}
	w.input = in
	w.hasInput = true
	w.gen++
	gen := w.gen
	if w.cancel != nil {
		w.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.snap = Snapshot{IsLoading: true}
	w.mu.Unlock()

	go w.run(ctx, gen, in)
}

// Snapshot returns the facade's current state.
func (w *Watcher) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snap
}

// Close detaches from any in-flight cycle. The shared work completes
// and populates the caches regardless; no further callbacks fire.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *Watcher) run(ctx context.Context, gen uint64, in Input) {
	res, err := w.converter.Convert(ctx, convert.Request{
		BasePrice:      in.BasePrice,
		BaseCurrency:   in.BaseCurrency,
		APIKey:         in.APIKey,
		ManualCurrency: in.ManualCurrency,
	})

	w.mu.Lock()
	if gen != w.gen {
		// Superseded while in flight: this cycle never completed for
		// the current input, so no state change and no callback.
		w.mu.Unlock()
		return
	}
	if err != nil {
		w.snap = Snapshot{Err: err}
	} else {
		w.snap = Snapshot{
			ConvertedPrice: res.ConvertedPrice,
			LocalCurrency:  res.LocalCurrency,
			BaseCurrency:   res.BaseCurrency,
			ExchangeRate:   res.ExchangeRate,
		}
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Debug("conversion cycle failed", "error", err)
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	if w.onSuccess != nil {
		w.onSuccess(*res)
	}
}
