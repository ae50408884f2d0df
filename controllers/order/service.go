package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/raseen-shahil/Med-App-sub000/apperr"
	cartControllers "github.com/raseen-shahil/Med-App-sub000/controllers/cart"
	"github.com/raseen-shahil/Med-App-sub000/events"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCartEmpty           = apperr.New(http.StatusBadRequest, "Cart is empty")
	ErrInvalidTransition   = apperr.New(http.StatusConflict, "Order cannot change from its current status")
	ErrOrderNotFound       = apperr.NotFound("Order")
	ErrMedicineUnavailable = apperr.New(http.StatusConflict, "A medicine in your cart is no longer available")
	ErrAddressNotFound     = apperr.NotFound("Address")
)

// Service owns order placement and the order state machine.
type Service struct {
	db               *gorm.DB
	events           events.Publisher
	notifier         Notifier
	shippingFee      decimal.Decimal
	freeShippingOver decimal.Decimal
	deliveryDays     int
	now              func() time.Time
}

func NewService(db *gorm.DB, publisher events.Publisher, notifier Notifier, shippingFee, freeShippingOver decimal.Decimal, deliveryDays int) *Service {
	return &Service{
		db:               db,
		events:           publisher,
		notifier:         notifier,
		shippingFee:      shippingFee,
		freeShippingOver: freeShippingOver,
		deliveryDays:     deliveryDays,
		now:              time.Now,
	}
}

type CustomerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type AddressInput struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type CheckoutRequest struct {
	CustomerDetails CustomerInput `json:"customerDetails"`
	ShippingAddress AddressInput  `json:"shippingAddress"`
	AddressID       *uint         `json:"addressId"`
	PaymentMethod   string        `json:"paymentMethod"`
}

func (r CheckoutRequest) form() models.ShippingForm {
	return models.ShippingForm{
		FullName: r.CustomerDetails.Name,
		Phone:    r.CustomerDetails.Phone,
		Address:  r.ShippingAddress.Address,
		City:     r.ShippingAddress.City,
		State:    r.ShippingAddress.State,
		Pincode:  r.ShippingAddress.Pincode,
	}
}

// ShippingFor returns the shipping charge for a subtotal.
func (s *Service) ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if s.freeShippingOver.IsPositive() && subtotal.GreaterThanOrEqual(s.freeShippingOver) {
		return decimal.Zero
	}
	return s.shippingFee
}

// resolveForm fills the form from a saved address when one is referenced;
// fields sent explicitly win over the saved ones.
func (s *Service) resolveForm(userID string, req CheckoutRequest) (models.ShippingForm, error) {
	form := req.form().Trim()
	if req.AddressID == nil {
		return form, nil
	}
	var addr models.Address
	err := s.db.Where("id = ? AND user_id = ?", *req.AddressID, userID).First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return form, ErrAddressNotFound
	}
	if err != nil {
		return form, err
	}
	saved := addr.Form()
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&form.FullName, saved.FullName)
	fill(&form.Phone, saved.Phone)
	fill(&form.Address, saved.Address)
	fill(&form.City, saved.City)
	fill(&form.State, saved.State)
	fill(&form.Pincode, saved.Pincode)
	return form, nil
}

// ValidateCheckout checks the shipping form and payment method. Nothing is
// written when it fails.
func ValidateCheckout(form models.ShippingForm, method models.PaymentMethod) error {
	v := &apperr.ValidationError{}
	for field, msg := range form.Problems() {
		v.Add(field, msg)
	}
	if !method.Valid() {
		v.Add("paymentMethod", "Payment method must be cod, card or upi")
	}
	return v.OrNil()
}

// PlaceOrder turns the user's cart into a pending order in one transaction:
// stock is checked and deducted, lines are priced from the current medicine
// price and exactly the ordered cart rows are removed. replayed is true when
// idempotencyKey matched an earlier order, which is returned unchanged.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req CheckoutRequest, idempotencyKey string) (order *models.Order, replayed bool, err error) {
	form, err := s.resolveForm(userID, req)
	if err != nil {
		return nil, false, err
	}
	method := models.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod)))
	if err := ValidateCheckout(form, method); err != nil {
		return nil, false, err
	}

	var key *string
	if idempotencyKey != "" {
		key = &idempotencyKey
		if existing, err := s.findByIdempotencyKey(ctx, userID, idempotencyKey); err == nil {
			return existing, true, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}

	order = &models.Order{
		UserID:          userID,
		IdempotencyKey:  key,
		CustomerDetails: models.CustomerDetails{Name: form.FullName, Phone: form.Phone},
		ShippingAddress: models.ShippingAddress{Address: form.Address, City: form.City, State: form.State, Pincode: form.Pincode},
		Status:          models.OrderStatusPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := cartControllers.LockCart(tx, userID)
		if err != nil {
			return err
		}
		if len(cart) == 0 {
			return ErrCartEmpty
		}
		// lock in a fixed order so two checkouts never wait on each other
		sort.Slice(cart, func(i, j int) bool { return cart[i].MedicineID < cart[j].MedicineID })

		subtotal := decimal.Zero
		cartIDs := make([]uint, 0, len(cart))
		for _, line := range cart {
			med, err := cartControllers.LockMedicine(tx, line.MedicineID)
			if errors.Is(err, cartControllers.ErrMedicineNotFound) {
				return fmt.Errorf("%s: %w", line.Name, ErrMedicineUnavailable)
			}
			if err != nil {
				return err
			}
			if med.Stock < line.Quantity {
				return fmt.Errorf("%s: %w", med.Name, cartControllers.ErrInsufficientStock)
			}
			if err := tx.Model(med).UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity)).Error; err != nil {
				return err
			}

			item := models.OrderItem{
				MedicineID: med.ID,
				SellerID:   med.SellerID,
				Name:       med.Name,
				Brand:      med.Brand,
				Price:      med.Price,
				Quantity:   line.Quantity,
				ImageURL:   med.ImageURL,
			}
			subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			order.Items = append(order.Items, item)
			cartIDs = append(cartIDs, line.ID)
		}

		shipping := s.ShippingFor(subtotal)
		now := s.now()
		order.CreatedAt = now
		order.Payment = models.Payment{
			Method:   method,
			Subtotal: subtotal,
			Shipping: shipping,
			Total:    subtotal.Add(shipping),
			Status:   models.PaymentStatusPending,
		}
		if err := insertOrder(tx, order, now); err != nil {
			return err
		}
		return tx.Where("user_id = ? AND id IN ?", userID, cartIDs).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		if key != nil && !isClientError(err) {
			// a concurrent request with the same key may have won the insert
			if existing, ferr := s.findByIdempotencyKey(ctx, userID, idempotencyKey); ferr == nil {
				return existing, true, nil
			}
		}
		return nil, false, err
	}

	log.Info().Str("order_id", order.OrderID).Str("user_id", userID).
		Str("total", order.Payment.Total.StringFixed(2)).Int("items", len(order.Items)).
		Msg("🧾 order placed")

	events.Emit(ctx, s.events, events.TopicOrderPlaced, order.OrderID, events.OrderPlaced{
		OrderID:   order.OrderID,
		UserID:    userID,
		SellerIDs: order.SellerIDs(),
		Total:     order.Payment.Total,
		ItemCount: len(order.Items),
		CreatedAt: order.CreatedAt,
	})
	if s.notifier != nil {
		s.notifier.NotifyNewOrder(*order)
	}
	return order, false, nil
}

// insertOrder stores the order as ORD<unix nanos>. When an order placed in the
// same instant already holds that id, the next nanosecond is tried once.
func insertOrder(tx *gorm.DB, order *models.Order, now time.Time) error {
	ts := now.UnixNano()
	for attempt := 0; ; attempt++ {
		order.OrderID = fmt.Sprintf("ORD%d", ts+int64(attempt))
		if err := tx.SavePoint("order_insert").Error; err != nil {
			return err
		}
		err := tx.Create(order).Error
		if err == nil {
			return nil
		}
		if rerr := tx.RollbackTo("order_insert").Error; rerr != nil {
			return rerr
		}
		var taken int64
		if attempt > 0 || tx.Model(&models.Order{}).Where("order_id = ?", order.OrderID).Count(&taken).Error != nil || taken == 0 {
			return err
		}
		log.Warn().Str("order_id", order.OrderID).Msg("order id already taken, retrying")
		order.ID = 0
	}
}

func isClientError(err error) bool {
	var aerr *apperr.Error
	var verr *apperr.ValidationError
	return errors.As(err, &aerr) || errors.As(err, &verr)
}

func (s *Service) findByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder moves one of the customer's pending orders to cancelled and
// puts the stock back.
func (s *Service) CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ? AND user_id = ?", orderID, userID).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Where("order_ref = ?", order.ID).Find(&order.Items).Error; err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(models.OrderStatusCancelled) {
			return fmt.Errorf("%s -> %s: %w", order.Status, models.OrderStatusCancelled, ErrInvalidTransition)
		}

		now := s.now()
		if err := transition(tx, &order, models.OrderStatusCancelled, map[string]any{"cancelled_at": now}); err != nil {
			return err
		}
		order.CancelledAt = &now

		for _, it := range order.Items {
			if err := tx.Model(&models.Medicine{}).Where("id = ?", it.MedicineID).
				UpdateColumn("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emitStatusChange(ctx, &order, models.OrderStatusPending, userID)
	return &order, nil
}

// ShipOrder marks a pending order completed on behalf of a seller with at
// least one item in it and sets the expected delivery date.
func (s *Service) ShipOrder(ctx context.Context, sellerID, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ?", orderID).
			Where("id IN (?)", tx.Model(&models.OrderItem{}).Select("order_ref").Where("seller_id = ?", sellerID)).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(models.OrderStatusCompleted) {
			return fmt.Errorf("%s -> %s: %w", order.Status, models.OrderStatusCompleted, ErrInvalidTransition)
		}

		shippedAt := s.now()
		expected := shippedAt.Add(time.Duration(s.deliveryDays) * 24 * time.Hour)
		if err := transition(tx, &order, models.OrderStatusCompleted, map[string]any{
			"shipped_at":           shippedAt,
			"expected_delivery_at": expected,
		}); err != nil {
			return err
		}
		order.ShippedAt = &shippedAt
		order.ExpectedDeliveryAt = &expected
		return tx.Where("order_ref = ?", order.ID).Find(&order.Items).Error
	})
	if err != nil {
		return nil, err
	}
	s.emitStatusChange(ctx, &order, models.OrderStatusPending, sellerID)
	return &order, nil
}

// transition writes the new status only if the row is still in the status
// that was read, so a concurrent change surfaces as ErrInvalidTransition.
func transition(tx *gorm.DB, order *models.Order, to models.OrderStatus, extra map[string]any) error {
	updates := map[string]any{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s -> %s: %w", order.Status, to, ErrInvalidTransition)
	}
	order.Status = to
	return nil
}

func (s *Service) emitStatusChange(ctx context.Context, order *models.Order, from models.OrderStatus, by string) {
	log.Info().Str("order_id", order.OrderID).Str("from", string(from)).Str("to", string(order.Status)).
		Str("by", by).Msg("order status changed")
	events.Emit(ctx, s.events, events.TopicOrderStatusChanged, order.OrderID, events.OrderStatusChanged{
		OrderID:   order.OrderID,
		UserID:    order.UserID,
		From:      string(from),
		To:        string(order.Status),
		ChangedBy: by,
		ChangedAt: s.now(),
	})
}

func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}

func (s *Service) GetUserOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("order_id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListSellerOrders returns orders holding at least one of the seller's items,
// each carrying only that seller's lines. An empty status lists every order.
func (s *Service) ListSellerOrders(ctx context.Context, sellerID string, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, (&apperr.ValidationError{}).Add("status", "Status must be pending, completed or cancelled")
	}
	db := s.db.WithContext(ctx)
	q := db.Preload("Items", "seller_id = ?", sellerID).
		Where("id IN (?)", db.Model(&models.OrderItem{}).Select("order_ref").Where("seller_id = ?", sellerID))
	if status != "" {
		q = q.Where("status = ?", status)
	}
	orders := []models.Order{}
	err := q.Order("created_at DESC, id DESC").Find(&orders).Error
	return orders, err
}
