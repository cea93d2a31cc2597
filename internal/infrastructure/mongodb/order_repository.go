package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/sla-service/internal/domain"
	"github.com/wms-platform/sla-service/pkg/logging"
	"github.com/wms-platform/sla-service/pkg/metrics"
	"github.com/wms-platform/sla-service/pkg/mongodb"
)

const ordersCollection = "orders"

// OrderRepository mirrors enriched batches to MongoDB. It is a durable
// side channel; the in-memory store stays the read path for queries.
type OrderRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

// NewOrderRepository creates the repository and ensures its indexes
func NewOrderRepository(ctx context.Context, client *mongodb.Client, logger *logging.Logger, m *metrics.Metrics) (*OrderRepository, error) {
	repo := &OrderRepository{
		collection: client.Collection(ordersCollection),
		logger:     logger.WithComponent("order_repository"),
		metrics:    m,
	}

	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create order indexes: %w", err)
	}
	return repo, nil
}

func (r *OrderRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "orderId", Value: 1},
				{Key: "batchId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "batchId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "slaStatus.level", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// SaveBatch upserts every order of a batch keyed by (orderId, batchId)
func (r *OrderRepository) SaveBatch(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, len(orders))
	for i, order := range orders {
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"orderId": order.OrderID, "batchId": order.BatchID}).
			SetReplacement(order).
			SetUpsert(true)
	}

	started := time.Now()
	result, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	r.record("bulk_write", started, err)
	if err != nil {
		return fmt.Errorf("failed to save batch: %w", err)
	}

	r.logger.DatabaseQuery(ctx, ordersCollection, "bulk_write", time.Since(started), true,
		result.UpsertedCount+result.ModifiedCount)
	return nil
}

// FindByBatch loads every order of a batch, ascending by remaining time
func (r *OrderRepository) FindByBatch(ctx context.Context, batchID string) ([]*domain.Order, error) {
	started := time.Now()
	cursor, err := r.collection.Find(ctx, bson.M{"batchId": batchID},
		options.Find().SetSort(bson.D{{Key: "timeRemainingHours", Value: 1}}))
	r.record("find", started, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch %s: %w", batchID, err)
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode batch %s: %w", batchID, err)
	}
	return orders, nil
}

// LatestBatchID returns the id of the most recently mirrored batch,
// or "" when the collection is empty
func (r *OrderRepository) LatestBatchID(ctx context.Context) (string, error) {
	started := time.Now()
	var doc struct {
		BatchID string `bson:"batchId"`
	}
	err := r.collection.FindOne(ctx, bson.M{},
		options.FindOne().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetProjection(bson.M{"batchId": 1}),
	).Decode(&doc)
	r.record("find_one", started, err)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find latest batch: %w", err)
	}
	return doc.BatchID, nil
}

// ConfirmOrders mirrors a bulk confirmation, skipping orders that are
// already confirmed
func (r *OrderRepository) ConfirmOrders(ctx context.Context, orderIDs []string, at time.Time) (int64, error) {
	started := time.Now()
	result, err := r.collection.UpdateMany(ctx,
		bson.M{
			"orderId": bson.M{"$in": orderIDs},
			"status":  domain.StatusPending,
		},
		bson.M{"$set": bson.M{
			"status":      domain.StatusConfirmed,
			"confirmedAt": at.UTC(),
			"updatedAt":   at.UTC(),
		}},
	)
	r.record("update_many", started, err)
	if err != nil {
		return 0, fmt.Errorf("failed to confirm orders: %w", err)
	}

	return result.ModifiedCount, nil
}

func (r *OrderRepository) record(operation string, started time.Time, err error) {
	if r.metrics != nil {
		r.metrics.RecordMongoOperation(ordersCollection, operation, err == nil, time.Since(started))
	}
}
