package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/parallel"

	"github.com/outofforest/noun"
	"github.com/outofforest/noun/mug"
	"github.com/outofforest/noun/types"
)

// WriterConfig stores writer configuration.
type WriterConfig struct {
	Store        Store
	NumOfWorkers uint64
	Capacity     uint64
}

// NewWriter creates new batch writer persisting jammed nouns into the store.
func NewWriter(config WriterConfig) *Writer {
	if config.NumOfWorkers == 0 {
		config.NumOfWorkers = 1
	}
	return &Writer{
		config:   config,
		nounCh:   make(chan *noun.Noun, config.Capacity),
		recordCh: make(chan record, config.Capacity),
	}
}

// Writer jams nouns on a pool of workers and appends them to the store.
// Nouns are accepted with Put until Close is called; Run returns once
// everything accepted has been persisted and synced.
type Writer struct {
	config   WriterConfig
	nounCh   chan *noun.Noun
	recordCh chan record
	count    atomic.Uint64
}

type record struct {
	mug  types.Mug
	blob []byte
}

// Put submits a noun for persisting. It must not be called after Close.
func (w *Writer) Put(n *noun.Noun) {
	w.nounCh <- n
}

// Close tells the writer no more nouns will be submitted.
func (w *Writer) Close() {
	close(w.nounCh)
}

// Count returns the number of nouns persisted so far.
func (w *Writer) Count() uint64 {
	return w.count.Load()
}

// Run processes submitted nouns until the writer is closed or the context is
// canceled. Encoding runs on NumOfWorkers goroutines; the store is written by
// a single one, so Store implementations need no locking.
func (w *Writer) Run(ctx context.Context) error {
	log := logger.Get(ctx)

	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		var wg sync.WaitGroup
		wg.Add(int(w.config.NumOfWorkers))

		for i := range w.config.NumOfWorkers {
			spawn(fmt.Sprintf("encoder-%02d", i), parallel.Continue, func(ctx context.Context) error {
				defer wg.Done()

				for {
					select {
					case <-ctx.Done():
						return errors.WithStack(ctx.Err())
					case n, ok := <-w.nounCh:
						if !ok {
							return nil
						}
						blob := noun.Jam(n)
						select {
						case <-ctx.Done():
							return errors.WithStack(ctx.Err())
						case w.recordCh <- record{mug: mug.SumBytes(blob), blob: blob}:
						}
					}
				}
			})
		}
		spawn("closer", parallel.Continue, func(ctx context.Context) error {
			wg.Wait()
			close(w.recordCh)
			return nil
		})
		spawn("storer", parallel.Exit, func(ctx context.Context) error {
			for {
				select {
				case <-ctx.Done():
					return errors.WithStack(ctx.Err())
				case r, ok := <-w.recordCh:
					if !ok {
						if err := w.config.Store.Sync(); err != nil {
							return err
						}
						log.Info("nouns persisted", zap.Uint64("count", w.count.Load()))
						return nil
					}
					if err := w.config.Store.Put(r.mug, r.blob); err != nil {
						return err
					}
					w.count.Add(1)
				}
			}
		})

		return nil
	})
}
