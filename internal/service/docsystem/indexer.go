package docsystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"docvault/internal/config"
	docsysRepo "docvault/internal/domain/repositories/docsystem"
	docsysSvc "docvault/internal/domain/services/docsystem"
	"docvault/internal/service/docsystem/converter"
)

const (
	indexQueueSize = 256
	indexTimeout   = 2 * time.Minute
)

type indexJob struct {
	documentID  string
	storagePath string
	filename    string
}

// Indexer extracts text from stored uploads on a fixed pool of workers and
// writes it to the document's content field.
type Indexer struct {
	docRepo    docsysRepo.DocumentRepository
	store      docsysSvc.FileStore
	converters *converter.ConverterRegistry
	logger     *slog.Logger
	maxExtract int64

	jobs   chan indexJob
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

var _ docsysSvc.ContentIndexer = (*Indexer)(nil)

// NewIndexer starts workers goroutines. workers <= 0 uses config.ExtractionWorkers.
func NewIndexer(
	docRepo docsysRepo.DocumentRepository,
	store docsysSvc.FileStore,
	converters *converter.ConverterRegistry,
	workers int,
	logger *slog.Logger,
) *Indexer {
	if workers <= 0 {
		workers = config.ExtractionWorkers
	}
	ix := &Indexer{
		docRepo:    docRepo,
		store:      store,
		converters: converters,
		logger:     logger,
		maxExtract: config.MaxExtractSize,
		jobs:       make(chan indexJob, indexQueueSize),
	}
	for range workers {
		ix.wg.Add(1)
		go ix.work()
	}
	return ix
}

// Enqueue schedules extraction. Files without a converter are skipped, and a
// full queue drops the job with a warning rather than block the upload.
func (ix *Indexer) Enqueue(documentID, storagePath, filename string) {
	if !ix.converters.Supports(filename) {
		ix.logger.Debug("no converter for upload", "document_id", documentID, "filename", filename)
		return
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.closed {
		ix.logger.Warn("indexer closed, extraction skipped", "document_id", documentID)
		return
	}
	select {
	case ix.jobs <- indexJob{documentID: documentID, storagePath: storagePath, filename: filename}:
	default:
		ix.logger.Warn("extraction queue full, job dropped", "document_id", documentID)
	}
}

// Close stops accepting jobs and waits for queued ones or ctx expiry.
func (ix *Indexer) Close(ctx context.Context) error {
	ix.mu.Lock()
	if !ix.closed {
		ix.closed = true
		close(ix.jobs)
	}
	ix.mu.Unlock()

	done := make(chan struct{})
	go func() {
		ix.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("indexer shutdown: %w", ctx.Err())
	}
}

func (ix *Indexer) work() {
	defer ix.wg.Done()
	for job := range ix.jobs {
		if err := ix.process(job); err != nil {
			ix.logger.Error("content extraction failed",
				"document_id", job.documentID,
				"filename", job.filename,
				"error", err,
			)
		}
	}
}

func (ix *Indexer) process(job indexJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	rc, err := ix.store.Open(ctx, job.storagePath)
	if err != nil {
		return fmt.Errorf("open stored file: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(rc, ix.maxExtract+1))
	rc.Close()
	if err != nil {
		return fmt.Errorf("read stored file: %w", err)
	}
	if int64(len(data)) > ix.maxExtract {
		data = data[:ix.maxExtract]
		ix.logger.Warn("stored file exceeds extraction limit, content truncated",
			"document_id", job.documentID,
			"filename", job.filename,
			"limit", ix.maxExtract,
		)
	}

	text, err := ix.converters.Convert(ctx, job.filename, data)
	if err != nil {
		if errors.Is(err, converter.ErrUnsupported) {
			return nil
		}
		return err
	}

	if err := ix.docRepo.UpdateContent(ctx, job.documentID, text); err != nil {
		return fmt.Errorf("save content: %w", err)
	}
	ix.logger.Debug("content extracted", "document_id", job.documentID, "chars", len(text))
	return nil
}
