package services

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/common/logger"
	"github.com/Mayank561/ECOMMERCE-API/database"
	"github.com/Mayank561/ECOMMERCE-API/models"
	awspkg "github.com/Mayank561/ECOMMERCE-API/pkg/aws"
	"github.com/Mayank561/ECOMMERCE-API/repository"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type OrderLine struct {
	Product  string `json:"product" binding:"required,objectid"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	OrderItems       []OrderLine `json:"orderItems" binding:"required,min=1,dive"`
	ShippingAddress1 string      `json:"shippingAddress1" binding:"required"`
	ShippingAddress2 string      `json:"shippingAddress2"`
	City             string      `json:"city" binding:"required"`
	Zip              string      `json:"zip" binding:"required"`
	Country          string      `json:"country" binding:"required"`
	Phone            string      `json:"phone" binding:"required"`
	Status           string      `json:"status"`
	User             string      `json:"user" binding:"required,objectid"`
}

const (
	orderNotFound     = "Order not found"
	compensateTimeout = 10 * time.Second
)

type OrderService struct {
	orders   repository.OrderRepo
	items    repository.OrderItemRepo
	products repository.ProductRepo
	cats     repository.CategoryRepo
	users    repository.UserRepo
	tx       database.TxRunner
	events   EventPublisher
	metrics  MetricsRecorder
}

func NewOrderService(
	orders repository.OrderRepo,
	items repository.OrderItemRepo,
	products repository.ProductRepo,
	cats repository.CategoryRepo,
	users repository.UserRepo,
	tx database.TxRunner,
	events EventPublisher,
	metrics MetricsRecorder,
) *OrderService {
	if tx == nil {
		tx = database.DirectRunner{}
	}
	return &OrderService{
		orders:   orders,
		items:    items,
		products: products,
		cats:     cats,
		users:    users,
		tx:       tx,
		events:   events,
		metrics:  metrics,
	}
}

// List returns every order, newest first, with the user's name expanded.
func (s *OrderService) List(ctx context.Context) ([]models.OrderSummary, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, storeErr(err, orderNotFound)
	}
	if len(orders) == 0 {
		return nil, apperrors.NotFound("No orders found")
	}

	users, err := s.userRefs(ctx, orders)
	if err != nil {
		return nil, err
	}
	out := make([]models.OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, models.OrderSummary{Order: o, User: users[o.User]})
	}
	return out, nil
}

// Get returns one order with user, line items, products and their
// categories expanded.
func (s *OrderService) Get(ctx context.Context, id string) (*models.OrderDetail, error) {
	oid, err := parseID(id, "Order")
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		return nil, storeErr(err, orderNotFound)
	}
	details, err := s.expand(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListByUser returns the user's orders, newest first, fully expanded.
func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]models.OrderDetail, error) {
	uid, err := parseID(userID, "User")
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.FindByUser(ctx, uid)
	if err != nil {
		return nil, storeErr(err, orderNotFound)
	}
	if len(orders) == 0 {
		return nil, apperrors.NotFound("No orders found for this user")
	}
	return s.expand(ctx, orders)
}

// Create stores one line item per requested line and then the order that
// references them. The total is priced from the products as they are now
// and is never recomputed. Either everything is written or nothing is: with
// a transactional runner the transaction is aborted, otherwise line items
// already written are deleted again.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	userID, err := parseID(req.User, "User")
	if err != nil {
		return nil, err
	}
	lines, err := s.resolveLines(ctx, req.OrderItems)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromFloat(l.price).Mul(decimal.NewFromInt(int64(l.quantity))))
	}
	totalPrice, _ := total.Float64()

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.DefaultOrderStatus
	}

	var (
		order   *models.Order
		created []primitive.ObjectID
	)
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// the runner may retry fn, so start from scratch each time
		created = created[:0]
		for _, l := range lines {
			item := &models.OrderItem{Quantity: l.quantity, Product: l.product}
			if err := s.items.Create(ctx, item); err != nil {
				return err
			}
			created = append(created, item.ID)
		}

		order = &models.Order{
			OrderItems:       append([]primitive.ObjectID(nil), created...),
			ShippingAddress1: req.ShippingAddress1,
			ShippingAddress2: req.ShippingAddress2,
			City:             req.City,
			Zip:              req.Zip,
			Country:          req.Country,
			Phone:            req.Phone,
			Status:           status,
			TotalPrice:       totalPrice,
			User:             userID,
			DateOrdered:      time.Now().UTC(),
		}
		return s.orders.Create(ctx, order)
	})
	if err != nil {
		if !s.tx.Transactional() {
			s.compensate(ctx, created)
		}
		recordCount(ctx, s.metrics, awspkg.MetricOrdersFailed)
		return nil, apperrors.Creation("the order cannot be created", err)
	}

	recordCount(ctx, s.metrics, awspkg.MetricOrdersCreated)
	logger.FromContext(ctx).Info("order created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.Float64("total_price", totalPrice),
		zap.Int("items", len(created)),
	)
	publishEvent(ctx, s.events, OrderEvent{
		Type:       EventOrderCreated,
		OrderID:    order.ID.Hex(),
		UserID:     userID.Hex(),
		TotalPrice: totalPrice,
		ItemCount:  len(order.OrderItems),
		OccurredAt: order.DateOrdered,
	})
	return order, nil
}

// UpdateStatus changes only the status of an order.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	oid, err := parseID(id, "Order")
	if err != nil {
		return nil, err
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, apperrors.Validation("status is required", nil)
	}
	order, err := s.orders.UpdateStatus(ctx, oid, status)
	if err != nil {
		return nil, storeErr(err, orderNotFound)
	}
	return order, nil
}

// Delete removes the order's line items and then the order. The order goes
// last, so if an item delete fails the order is still there and the delete
// can be retried; items that are already gone are skipped.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "Order")
	if err != nil {
		return err
	}
	order, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		return storeErr(err, orderNotFound)
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, itemID := range order.OrderItems {
			if err := s.items.Delete(ctx, itemID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		return s.orders.Delete(ctx, oid)
	})
	if err != nil {
		return storeErr(err, orderNotFound)
	}

	recordCount(ctx, s.metrics, awspkg.MetricOrdersDeleted)
	publishEvent(ctx, s.events, OrderEvent{
		Type:       EventOrderDeleted,
		OrderID:    oid.Hex(),
		UserID:     order.User.Hex(),
		TotalPrice: order.TotalPrice,
		ItemCount:  len(order.OrderItems),
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// TotalSales sums totalPrice over all orders. With no orders there is
// nothing to sum and an aggregation error is returned.
func (s *OrderService) TotalSales(ctx context.Context) (float64, error) {
	total, err := s.orders.TotalSales(ctx)
	if errors.Is(err, repository.ErrNoResults) {
		return 0, apperrors.Aggregation("The order sales cannot be generated", err)
	}
	if err != nil {
		return 0, storeErr(err, orderNotFound)
	}
	return total, nil
}

func (s *OrderService) Count(ctx context.Context) (int64, error) {
	count, err := s.orders.Count(ctx)
	if err != nil {
		return 0, storeErr(err, orderNotFound)
	}
	return count, nil
}

type pricedLine struct {
	product  primitive.ObjectID
	quantity int
	price    float64
}

// resolveLines validates the requested lines and reads the current price of
// each product before anything is written.
func (s *OrderService) resolveLines(ctx context.Context, lines []OrderLine) ([]pricedLine, error) {
	if len(lines) == 0 {
		return nil, apperrors.Validation("an order needs at least one item", nil)
	}

	out := make([]pricedLine, 0, len(lines))
	ids := make([]primitive.ObjectID, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, apperrors.Validation("quantity must be at least 1", nil)
		}
		pid, err := parseID(l.Product, "Product")
		if err != nil {
			return nil, err
		}
		out = append(out, pricedLine{product: pid, quantity: l.Quantity})
		ids = append(ids, pid)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err, productNotFound)
	}
	prices := make(map[primitive.ObjectID]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}
	for i := range out {
		price, ok := prices[out[i].product]
		if !ok {
			return nil, apperrors.Validation("Invalid Product "+out[i].product.Hex(), nil)
		}
		out[i].price = price
	}
	return out, nil
}

// compensate deletes line items written by a failed create. It runs even if
// the request context is already cancelled.
func (s *OrderService) compensate(ctx context.Context, itemIDs []primitive.ObjectID) {
	if len(itemIDs) == 0 {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	log := logger.FromContext(ctx)
	for _, id := range itemIDs {
		if err := s.items.Delete(cctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.Error("failed to remove order item after failed order", zap.String("item_id", id.Hex()), zap.Error(err))
			continue
		}
		recordCount(cctx, s.metrics, awspkg.MetricCompensatedLineItems)
	}
}

func (s *OrderService) userRefs(ctx context.Context, orders []models.Order) (map[primitive.ObjectID]*models.UserRef, error) {
	seen := make(map[primitive.ObjectID]bool)
	ids := make([]primitive.ObjectID, 0)
	for _, o := range orders {
		if !seen[o.User] {
			seen[o.User] = true
			ids = append(ids, o.User)
		}
	}
	refs, err := s.users.FindRefs(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	byID := make(map[primitive.ObjectID]*models.UserRef, len(refs))
	for i := range refs {
		byID[refs[i].ID] = &refs[i]
	}
	return byID, nil
}

// expand resolves user, line items, products and categories for orders with
// one query per collection. References that no longer resolve are left nil.
func (s *OrderService) expand(ctx context.Context, orders []models.Order) ([]models.OrderDetail, error) {
	users, err := s.userRefs(ctx, orders)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]primitive.ObjectID, 0)
	for _, o := range orders {
		itemIDs = append(itemIDs, o.OrderItems...)
	}
	items, err := s.items.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, storeErr(err, orderNotFound)
	}
	itemsByID := make(map[primitive.ObjectID]models.OrderItem, len(items))
	productIDs := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		itemsByID[it.ID] = it
		productIDs = append(productIDs, it.Product)
	}

	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, storeErr(err, productNotFound)
	}
	categories, err := loadCategories(ctx, s.cats, products)
	if err != nil {
		return nil, err
	}
	productsByID := make(map[primitive.ObjectID]*models.ProductDetail, len(products))
	for _, p := range products {
		d := productDetail(p, categories)
		productsByID[p.ID] = &d
	}

	out := make([]models.OrderDetail, 0, len(orders))
	for _, o := range orders {
		detail := models.OrderDetail{
			Order:      o,
			User:       users[o.User],
			OrderItems: make([]models.OrderItemDetail, 0, len(o.OrderItems)),
		}
		for _, itemID := range o.OrderItems {
			it, ok := itemsByID[itemID]
			if !ok {
				continue
			}
			detail.OrderItems = append(detail.OrderItems, models.OrderItemDetail{
				ID:       it.ID,
				Quantity: it.Quantity,
				Product:  productsByID[it.Product],
			})
		}
		out = append(out, detail)
	}
	return out, nil
}
