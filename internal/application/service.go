package application

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/wms-platform/sla-service/internal/domain"
	"github.com/wms-platform/sla-service/pkg/api"
	"github.com/wms-platform/sla-service/pkg/logging"
	"github.com/wms-platform/sla-service/pkg/metrics"
)

// SLAService orchestrates the ingest pipeline, the in-memory batch
// store, the durable MongoDB mirror and the event stream. The store is
// the read path; the repository only mirrors batches for restart
// recovery.
type SLAService struct {
	store      *BatchStore
	pipeline   *Pipeline
	generator  *DemoGenerator
	repository domain.OrderRepository
	publisher  domain.EventPublisher
	logger     *logging.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewSLAService wires the service. Repository and publisher may be nil
// in tests; both are best-effort side channels.
func NewSLAService(
	store *BatchStore,
	matrix *domain.PolicyMatrix,
	repository domain.OrderRepository,
	publisher domain.EventPublisher,
	logger *logging.Logger,
	m *metrics.Metrics,
	now func() time.Time,
) *SLAService {
	if now == nil {
		now = time.Now
	}
	return &SLAService{
		store:      store,
		pipeline:   NewPipeline(matrix, now),
		generator:  NewDemoGenerator(now().UnixNano(), now),
		repository: repository,
		publisher:  publisher,
		logger:     logger.WithComponent("sla_service"),
		metrics:    m,
		now:        now,
	}
}

// IngestOrders runs the pipeline over a raw batch and installs the
// result as the active batch, replacing the previous one. The enriched
// batch is mirrored to MongoDB and announced on Kafka; failures of
// either mirror are logged, the in-memory ingest still succeeds.
func (s *SLAService) IngestOrders(ctx context.Context, rawRecords []map[string]any) IngestResult {
	batchID := uuid.NewString()
	result := s.pipeline.Process(rawRecords, batchID)

	s.store.ReplaceBatch(batchID, result.Orders, result.Quality)
	s.recordIngestMetrics(result)

	if s.repository != nil {
		if err := s.repository.SaveBatch(ctx, result.Orders); err != nil {
			s.logger.WithError(err).Error("failed to mirror batch", "batchId", batchID)
		}
	}

	if s.publisher != nil {
		event := domain.BatchIngestedEvent{
			BatchID:    batchID,
			Total:      result.Quality.Total,
			Clean:      result.Quality.Clean,
			Errors:     result.Quality.Errors,
			Duplicates: result.Quality.Duplicates,
			IngestedAt: s.now().UTC(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WithError(err).Error("failed to publish batch event", "batchId", batchID)
		}
	}

	s.logger.Event(ctx, "batch_ingested", map[string]any{
		"batchId":    batchID,
		"total":      result.Quality.Total,
		"clean":      result.Quality.Clean,
		"errors":     result.Quality.Errors,
		"duplicates": result.Quality.Duplicates,
	})

	return IngestResult{
		BatchID: batchID,
		Orders:  ToOrderDTOs(result.Orders),
		Quality: result.Quality,
	}
}

// GenerateDemoOrders ingests a generated batch
func (s *SLAService) GenerateDemoOrders(ctx context.Context, count int) IngestResult {
	return s.IngestOrders(ctx, s.generator.Generate(count))
}

// ListOrders applies filter, sort and pagination against the active
// batch.
func (s *SLAService) ListOrders(filter FilterSpec, sortSpec SortSpec, page api.PageRequest) api.PageResponse[OrderDTO] {
	matched := Apply(s.store.Snapshot(), filter, sortSpec)
	paged := api.Slice(matched, page)
	return api.NewPageResponse(ToOrderDTOs(paged), page.Page, page.PageSize, int64(len(matched)))
}

// GetSummary aggregates the active batch
func (s *SLAService) GetSummary() Summary {
	return Summarize(s.store.Snapshot())
}

// GetQuality returns the quality summary of the active batch
func (s *SLAService) GetQuality() QualitySummary {
	return s.store.Quality()
}

// ConfirmOrders bulk-confirms orders by id in the store and mirrors
// the status change to MongoDB. Unknown and already confirmed ids are
// skipped, not errors.
func (s *SLAService) ConfirmOrders(ctx context.Context, orderIDs []string) (int, error) {
	if len(orderIDs) == 0 {
		return 0, fmt.Errorf("no order ids given")
	}

	at := s.now().UTC()
	confirmed := s.store.Confirm(orderIDs, at)

	if s.metrics != nil && confirmed > 0 {
		s.metrics.RecordOrdersConfirmed(confirmed)
	}

	if s.repository != nil && confirmed > 0 {
		if _, err := s.repository.ConfirmOrders(ctx, orderIDs, at); err != nil {
			s.logger.WithError(err).Error("failed to mirror confirmations",
				"requested", len(orderIDs))
		}
	}

	s.logger.Event(ctx, "orders_confirmed", map[string]any{
		"requested": len(orderIDs),
		"confirmed": confirmed,
	})

	return confirmed, nil
}

// ExportCSV streams the filtered batch as CSV
func (s *SLAService) ExportCSV(w io.Writer, filter FilterSpec, sortSpec SortSpec) error {
	return WriteCSV(w, Apply(s.store.Snapshot(), filter, sortSpec))
}

// RestoreBatch reloads the most recent mirrored batch into the store,
// re-deriving every order against the current clock.
func (s *SLAService) RestoreBatch(ctx context.Context, batchID string) (int, error) {
	if s.repository == nil {
		return 0, nil
	}

	orders, err := s.repository.FindByBatch(ctx, batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to reload batch %s: %w", batchID, err)
	}
	if len(orders) == 0 {
		return 0, nil
	}

	now := s.now().UTC()
	for _, order := range orders {
		order.ApplyDerivedState(domain.DeriveOrderState(order, s.pipeline.matrix, now), now)
	}
	SortByTimeRemaining(orders)

	s.store.ReplaceBatch(batchID, orders, QualitySummary{Total: len(orders), Clean: len(orders)})
	return len(orders), nil
}

func (s *SLAService) recordIngestMetrics(result PipelineResult) {
	if s.metrics == nil {
		return
	}
	for _, order := range result.Orders {
		s.metrics.RecordOrderIngested(string(order.Platform))
	}
	for i := 0; i < result.Quality.Errors; i++ {
		s.metrics.RecordNormalizationError()
	}
	for i := 0; i < result.Quality.Duplicates; i++ {
		s.metrics.RecordDuplicate()
	}
	for i := 0; i < result.Quality.Cleaned; i++ {
		s.metrics.RecordCleaned()
	}
}
