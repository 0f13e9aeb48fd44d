package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderInProgress, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", invalid("status", "must be one of pending, confirmed, in_progress, completed, cancelled")
	}
	return st, nil
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice Money
	CreatedAt time.Time
}

func (i OrderItem) Total() (Money, error) {
	return i.UnitPrice.Mul(i.Quantity)
}

type Order struct {
	ID              uuid.UUID
	CustomerName    string
	CustomerEmail   string
	Items           []OrderItem
	Status          OrderStatus
	Notes           string
	Currency        string
	CreatedByUserID uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewOrder(customerName, customerEmail, notes, currency string, createdBy uuid.UUID) (*Order, error) {
	cur, err := normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	o := &Order{ID: uuid.New(), Status: OrderPending, Currency: cur, CreatedByUserID: createdBy}
	if err := o.UpdateCustomer(customerName, customerEmail, notes); err != nil {
		return nil, err
	}
	o.CreatedAt = o.UpdatedAt
	return o, nil
}

func (o *Order) UpdateCustomer(name, email, notes string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return invalid("customer_name", "is required")
	}
	if email == "" {
		return invalid("customer_email", "is required")
	}
	o.CustomerName = name
	o.CustomerEmail = email
	o.Notes = strings.TrimSpace(notes)
	o.UpdatedAt = Now()
	return nil
}

func (o *Order) AddItem(productID uuid.UUID, qty decimal.Decimal, unitPrice Money) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, invalid("product_id", "is required")
	}
	if !qty.IsPositive() {
		return nil, invalid("quantity", "must be greater than 0")
	}
	if unitPrice.Currency() != o.Currency {
		return nil, fmt.Errorf("%w: order in %s, item in %s", ErrCurrencyMismatch, o.Currency, unitPrice.Currency())
	}
	now := Now()
	o.Items = append(o.Items, OrderItem{
		ID:        uuid.New(),
		OrderID:   o.ID,
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: unitPrice,
		CreatedAt: now,
	})
	o.UpdatedAt = now
	return &o.Items[len(o.Items)-1], nil
}

func (o *Order) RemoveItem(itemID uuid.UUID) error {
	for i, it := range o.Items {
		if it.ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.UpdatedAt = Now()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrItemAbsent, itemID)
}

// Total sums the item totals; an empty order totals zero in its currency.
func (o *Order) Total() (Money, error) {
	total, err := ZeroMoney(o.Currency)
	if err != nil {
		return Money{}, err
	}
	for _, it := range o.Items {
		line, err := it.Total()
		if err != nil {
			return Money{}, err
		}
		if total, err = total.Add(line); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

func (o *Order) transitionErr(to OrderStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
}

func (o *Order) setStatus(s OrderStatus) {
	o.Status = s
	o.UpdatedAt = Now()
}

// Confirm moves a pending order with at least one item to confirmed.
func (o *Order) Confirm() error {
	if o.Status != OrderPending {
		return o.transitionErr(OrderConfirmed)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: cannot confirm an order without items", ErrInvalidTransition)
	}
	o.setStatus(OrderConfirmed)
	return nil
}

func (o *Order) Start() error {
	if o.Status != OrderConfirmed {
		return o.transitionErr(OrderInProgress)
	}
	o.setStatus(OrderInProgress)
	return nil
}

func (o *Order) Complete() error {
	if o.Status != OrderInProgress {
		return o.transitionErr(OrderCompleted)
	}
	o.setStatus(OrderCompleted)
	return nil
}

func (o *Order) Cancel() error {
	if o.Status.IsTerminal() {
		return o.transitionErr(OrderCancelled)
	}
	o.setStatus(OrderCancelled)
	return nil
}

// TransitionTo dispatches to the matching lifecycle operation.
func (o *Order) TransitionTo(to OrderStatus) error {
	switch to {
	case OrderConfirmed:
		return o.Confirm()
	case OrderInProgress:
		return o.Start()
	case OrderCompleted:
		return o.Complete()
	case OrderCancelled:
		return o.Cancel()
	}
	return o.transitionErr(to)
}

// IsOwnedBy reports whether the order was created by the given user.
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.CreatedByUserID != uuid.Nil && o.CreatedByUserID == userID
}
