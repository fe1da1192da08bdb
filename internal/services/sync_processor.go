package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mifi/internal/log"
	"mifi/internal/ports"
)

type SyncProcessorConfig struct {
	// PollInterval is how often the source is read (default: 15m)
	PollInterval time.Duration

	// Timeout bounds a single pull (default: 1m)
	Timeout time.Duration

	// SourceName labels the source in logs (default: remote)
	SourceName string

	// Recorder, if set, is told how many rows each successful pull wrote.
	Recorder RowsRecorder
}

type RowsRecorder interface {
	RowsWritten(inserted, skipped int)
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 15 * time.Minute,
		Timeout:      time.Minute,
		SourceName:   "remote",
	}
}

// SyncResult is the outcome of one pull.
type SyncResult struct {
	Read     int
	Inserted int
	Skipped  int
	Err      error
	At       time.Time
}

// SyncProcessor mirrors the transactions of a remote source (a sheet or
// the REST backend) into a local store. Rows whose id is already stored
// are skipped by the writer, so pulls are idempotent.
type SyncProcessor struct {
	source ports.TransactionSource
	writer ports.TransactionWriter
	config SyncProcessorConfig
	logger *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	last    SyncResult
}

func NewSyncProcessor(source ports.TransactionSource, writer ports.TransactionWriter, config SyncProcessorConfig, logger *log.Logger) *SyncProcessor {
	def := DefaultSyncProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.SourceName == "" {
		config.SourceName = def.SourceName
	}
	return &SyncProcessor{
		source: source,
		writer: writer,
		config: config,
		logger: log.OrDefault(logger).WithComponent(log.ComponentWorker),
	}
}

// Start pulls once and then every PollInterval. It returns an error if the
// processor is already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "sync processor started", "poll_interval", p.config.PollInterval.String())
	return nil
}

// Stop signals the loop and waits for it, or for ctx.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "sync processor stopped")
		return nil
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "sync processor stop timed out")
		return ctx.Err()
	}
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Last returns the result of the most recent pull.
func (p *SyncProcessor) Last() SyncResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.SyncOnce(ctx)
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.SyncOnce(ctx)
		}
	}
}

// SyncOnce performs one pull and records its result.
func (p *SyncProcessor) SyncOnce(ctx context.Context) SyncResult {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	res := SyncResult{At: time.Now()}
	raws, err := p.source.ListTransactions(ctx)
	if err != nil {
		res.Err = fmt.Errorf("read source: %w", err)
	} else {
		res.Read = len(raws)
		res.Inserted, res.Skipped, err = p.writer.AppendTransactions(ctx, raws)
		if err != nil {
			res.Err = fmt.Errorf("write transactions: %w", err)
		}
	}

	if res.Err != nil {
		p.logger.ErrorContext(ctx, "transaction sync failed", log.NewFields().
			WithOperation(log.OpImport).
			WithSource(p.config.SourceName).
			WithError(res.Err).
			ToSlice()...)
	} else {
		p.logger.InfoContext(ctx, "transactions synced",
			log.FieldCount, res.Inserted,
			log.FieldSkipped, res.Skipped)
		if p.config.Recorder != nil {
			p.config.Recorder.RowsWritten(res.Inserted, res.Skipped)
		}
	}

	p.mu.Lock()
	p.last = res
	p.mu.Unlock()
	return res
}
