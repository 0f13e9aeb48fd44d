package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/config"
	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	repo "github.com/oksasatya/pastryjoy-api/internal/domain/repository"
	"github.com/oksasatya/pastryjoy-api/internal/domain/service"
)

// JobPublisher puts a JSON job on a queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type OrderService struct {
	Repo      repo.OrderRepository
	Products  repo.ProductRepository
	Calc      *service.CostCalculator
	Tx        repo.Transactor
	Config    *config.Config
	Publisher JobPublisher // nil disables order e-mails
	Logger    *logrus.Logger
}

type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal // nil prices the item at the product's cost
}

type OrderInput struct {
	CustomerName  string
	CustomerEmail string
	Notes         string
	Items         []OrderItemInput
}

func NewOrderService(r repo.OrderRepository, products repo.ProductRepository, calc *service.CostCalculator, tx repo.Transactor, cfg *config.Config, logger *logrus.Logger) *OrderService {
	return &OrderService{Repo: r, Products: products, Calc: calc, Tx: tx, Config: cfg, Logger: logger}
}

// addItems prices and appends the items, returning product names by id for
// notifications.
func (s *OrderService) addItems(ctx context.Context, o *entity.Order, items []OrderItemInput) (map[uuid.UUID]string, error) {
	if len(items) == 0 {
		return nil, invalidInput("items", "must contain at least one item")
	}
	names := make(map[uuid.UUID]string, len(items))
	for i, it := range items {
		p, err := s.Products.GetByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, invalidInput(fmt.Sprintf("items[%d].product_id", i), "product "+it.ProductID.String()+" does not exist")
		}
		if err != nil {
			return nil, err
		}
		price, err := s.unitPrice(ctx, p, it.UnitPrice, i)
		if err != nil {
			return nil, err
		}
		if _, err := o.AddItem(p.ID, it.Quantity.Round(quantityPlaces), price); err != nil {
			var ve *entity.ValidationError
			if errors.As(err, &ve) {
				return nil, invalidInput(fmt.Sprintf("items[%d].%s", i, ve.Field), ve.Message)
			}
			return nil, err
		}
		names[p.ID] = p.Name
	}
	return names, nil
}

func (s *OrderService) unitPrice(ctx context.Context, p *entity.Product, explicit *decimal.Decimal, idx int) (entity.Money, error) {
	if explicit == nil {
		return s.Calc.UnitPrice(ctx, p)
	}
	amount := explicit.Round(2)
	if amount.LessThan(s.Config.MinUnitPrice) {
		return entity.Money{}, invalidInput(fmt.Sprintf("items[%d].unit_price", idx), "must be at least "+s.Config.MinUnitPrice.String())
	}
	price, err := entity.NewMoney(amount, s.Config.DefaultCurrency)
	if err != nil {
		var ve *entity.ValidationError
		if errors.As(err, &ve) {
			return entity.Money{}, invalidInput(fmt.Sprintf("items[%d].unit_price", idx), ve.Message)
		}
		return entity.Money{}, err
	}
	return price, nil
}

// Create prices and stores a new pending order owned by actor.
func (s *OrderService) Create(ctx context.Context, actor *entity.User, in OrderInput) (*entity.Order, error) {
	if !actor.Role.CanCreateOrders() {
		return nil, ErrForbidden
	}
	o, err := entity.NewOrder(in.CustomerName, in.CustomerEmail, in.Notes, s.Config.DefaultCurrency, actor.ID)
	if err != nil {
		return nil, err
	}
	var names map[uuid.UUID]string
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if names, err = s.addItems(ctx, o, in.Items); err != nil {
			return err
		}
		return s.Repo.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"order_id": o.ID, "user_id": actor.ID, "items": len(o.Items)}).Info("order created")
	}
	s.notifyCreated(ctx, o, names)
	return o, nil
}

func (s *OrderService) authorize(actor *entity.User, o *entity.Order) error {
	if actor.IsAdmin() || o.IsOwnedBy(actor.ID) {
		return nil
	}
	return ErrForbidden
}

func (s *OrderService) Get(ctx context.Context, actor *entity.User, id uuid.UUID) (*entity.Order, error) {
	o, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, o); err != nil {
		return nil, err
	}
	return o, nil
}

// List returns orders visible to actor: admins see every order and may filter
// by creator, everybody else sees only their own.
func (s *OrderService) List(ctx context.Context, actor *entity.User, f repo.OrderFilter, page repo.Page) ([]*entity.Order, int64, error) {
	if !actor.IsAdmin() {
		f.CreatedBy = actor.ID
	}
	f.CustomerEmail = strings.TrimSpace(f.CustomerEmail)
	items, err := s.Repo.Find(ctx, f, page)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.CountFiltered(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update changes customer details and notes of a pending order. A non-nil
// Items replaces the order lines and reprices them.
func (s *OrderService) Update(ctx context.Context, actor *entity.User, id uuid.UUID, in OrderInput) (*entity.Order, error) {
	var out *entity.Order
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.Get(ctx, actor, id)
		if err != nil {
			return err
		}
		if o.Status != entity.OrderPending {
			return fmt.Errorf("%w: order is %s", ErrOrderLocked, o.Status)
		}
		if err := o.UpdateCustomer(in.CustomerName, in.CustomerEmail, in.Notes); err != nil {
			return err
		}
		if in.Items != nil {
			o.Items = nil
			if _, err := s.addItems(ctx, o, in.Items); err != nil {
				return err
			}
		}
		if err := s.Repo.Update(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	return out, err
}

// UpdateStatus moves the order through its lifecycle.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*entity.Order, error) {
	next, err := entity.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	o, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := o.Status
	if err := o.TransitionTo(next); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, o); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"order_id": o.ID, "from": prev, "to": o.Status}).Info("order status changed")
	}
	s.notifyStatusChanged(ctx, o, prev)
	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.Repo.Delete(ctx, id)
}
