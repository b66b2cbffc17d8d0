package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/internal/repository"
)

type orderRepository struct {
	client       *mongo.Client
	orders       *mongo.Collection
	products     *mongo.Collection
	transactions bool
	log          *slog.Logger
}

func (r *orderRepository) Place(ctx context.Context, order *models.Order) error {
	if !r.transactions {
		return r.placeWithCompensation(ctx, order)
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	// WithTransaction retries transient write conflicts; a stock conflict is
	// not transient and aborts the transaction.
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.orders.InsertOne(sc, order); err != nil {
			return nil, fmt.Errorf("failed to insert order: %w", mapError(err))
		}
		for _, item := range order.OrderItems {
			if err := r.decrementStock(sc, item, order.CreatedAt, ""); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// reservationsField lists, on a product, the orders whose compensating
// placement has taken stock from it and not finished yet. A restore only
// applies to a product carrying the order's id, which makes it safe to
// attempt even when the outcome of the decrement is unknown.
const reservationsField = "pendingOrders"

// placeWithCompensation writes the order, then decrements stock item by item.
// On any failure the decrements already applied are reversed and the order is
// removed.
func (r *orderRepository) placeWithCompensation(ctx context.Context, order *models.Order) error {
	if _, err := r.orders.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to insert order: %w", mapError(err))
	}

	touched := make([]models.OrderItem, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		if err := r.decrementStock(ctx, item, order.CreatedAt, order.ID); err != nil {
			if decrementMayHaveApplied(err) {
				touched = append(touched, item)
			}
			r.compensate(ctx, order.ID, touched)
			return err
		}
		touched = append(touched, item)
	}

	r.releaseReservations(ctx, order.ID, touched)
	return nil
}

// decrementMayHaveApplied reports whether a failed decrement could still
// have changed the product. Only a definite answer from the server rules it
// out.
func decrementMayHaveApplied(err error) bool {
	return !errors.Is(err, repository.ErrStockConflict) && !errors.Is(err, repository.ErrInvalidQuantity)
}

func (r *orderRepository) compensate(ctx context.Context, orderID string, touched []models.OrderItem) {
	// Run to completion even if the request was cancelled.
	ctx = context.WithoutCancel(ctx)

	for _, item := range touched {
		res, err := r.products.UpdateOne(ctx,
			bson.M{"_id": item.Product, reservationsField: orderID},
			bson.M{
				"$inc":  bson.M{"countInStock": item.Qty},
				"$pull": bson.M{reservationsField: orderID},
			},
		)
		switch {
		case err != nil:
			r.log.Error("failed to restore stock, restore manually",
				"order_id", orderID, "product_id", item.Product, "qty", item.Qty, "error", err)
		case res.MatchedCount == 0:
			r.log.Debug("no stock taken for item, nothing to restore", "order_id", orderID, "product_id", item.Product)
		}
	}

	if _, err := r.orders.DeleteOne(ctx, bson.M{"_id": orderID}); err != nil {
		r.log.Error("failed to remove order during compensation", "order_id", orderID, "error", err)
	}
}

// releaseReservations clears the order's markers once placement succeeded.
// A leftover marker only matters to a later compensation of the same order,
// which cannot happen.
func (r *orderRepository) releaseReservations(ctx context.Context, orderID string, items []models.OrderItem) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Product)
	}
	_, err := r.products.UpdateMany(context.WithoutCancel(ctx),
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$pull": bson.M{reservationsField: orderID}},
	)
	if err != nil {
		r.log.Warn("failed to clear stock reservations", "order_id", orderID, "error", err)
	}
}

// decrementStock takes qty units only if that many are available. A non-empty
// reservation records the order id on the product for compensation.
func (r *orderRepository) decrementStock(ctx context.Context, item models.OrderItem, at time.Time, reservation string) error {
	if item.Qty <= 0 {
		return fmt.Errorf("%w: product %s", repository.ErrInvalidQuantity, item.Product)
	}

	update := bson.M{
		"$inc": bson.M{"countInStock": -item.Qty},
		"$set": bson.M{"updatedAt": at},
	}
	if reservation != "" {
		update["$addToSet"] = bson.M{reservationsField: reservation}
	}

	res, err := r.products.UpdateOne(ctx,
		bson.M{"_id": item.Product, "countInStock": bson.M{"$gte": item.Qty}},
		update,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement stock for %s: %w", item.Product, err)
	}
	if res.MatchedCount == 0 {
		return &repository.StockConflictError{ProductID: item.Product}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, mapError(err)
	}
	return &o, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *orderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *orderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	return r.orders.CountDocuments(ctx, bson.M{})
}

type salesRow struct {
	ID         any                  `bson:"_id"`
	TotalSales primitive.Decimal128 `bson:"totalSales"`
}

// totalPrice is stored as a string; $toDecimal keeps the sum exact.
var sumTotalPrice = bson.D{{Key: "$sum", Value: bson.D{{Key: "$toDecimal", Value: "$totalPrice"}}}}

func (r *orderRepository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalSales", Value: sumTotalPrice},
		}}},
	}

	rows, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return decimal.Zero, err
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	return toDecimal(rows[0].TotalSales)
}

func (r *orderRepository) SalesByDate(ctx context.Context) ([]models.DailySales, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "isPaid", Value: true}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$paidAt"},
			}}}},
			{Key: "totalSales", Value: sumTotalPrice},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	rows, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	sales := make([]models.DailySales, 0, len(rows))
	for _, row := range rows {
		day, ok := row.ID.(string)
		if !ok {
			continue
		}
		total, err := toDecimal(row.TotalSales)
		if err != nil {
			return nil, err
		}
		sales = append(sales, models.DailySales{Date: day, TotalSales: total.StringFixed(2)})
	}
	return sales, nil
}

func (r *orderRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]salesRow, error) {
	cursor, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	var rows []salesRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation: %w", err)
	}
	return rows, nil
}

func toDecimal(d primitive.Decimal128) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse decimal128 %q: %w", d.String(), err)
	}
	return v, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, id string, result models.PaymentResult, at time.Time) (*models.Order, error) {
	return r.update(ctx, id, bson.M{
		"isPaid":        true,
		"paidAt":        at,
		"paymentResult": result,
		"updatedAt":     at,
	})
}

func (r *orderRepository) MarkDelivered(ctx context.Context, id string, at time.Time) (*models.Order, error) {
	return r.update(ctx, id, bson.M{
		"isDelivered": true,
		"deliveredAt": at,
		"updatedAt":   at,
	})
}

func (r *orderRepository) update(ctx context.Context, id string, set bson.M) (*models.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := r.orders.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}
