package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/pkg/mailer"
	mailtpl "github.com/oksasatya/pastryjoy-api/pkg/mailer/templates"
)

const publishTimeout = 3 * time.Second

func (s *OrderService) publish(ctx context.Context, job mailer.EmailJob, orderID uuid.UUID) {
	if s.Publisher == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.Publisher.PublishJSON(c, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("order_id", orderID).Warn("publish order email failed")
	}
}

func (s *OrderService) notifyCreated(ctx context.Context, o *entity.Order, names map[uuid.UUID]string) {
	if s.Publisher == nil {
		return
	}
	items := make([]mailtpl.EmailItem, 0, len(o.Items))
	for _, it := range o.Items {
		line, err := it.Total()
		if err != nil {
			continue
		}
		items = append(items, mailtpl.EmailItem{
			Product:   names[it.ProductID],
			Quantity:  it.Quantity.String(),
			UnitPrice: it.UnitPrice.String(),
			Total:     line.String(),
		})
	}
	total, err := o.Total()
	if err != nil {
		return
	}
	data := mailtpl.NewOrderCreatedData(s.Config, o.CustomerName, o.CustomerEmail, o.ID.String(), string(o.Status),
		mailtpl.WithTime(o.CreatedAt),
		mailtpl.WithItems(items, total.String()),
		mailtpl.WithNotes(o.Notes),
	)
	s.publish(ctx, mailer.OrderJob(o.CustomerEmail, o.ID.String(), mailtpl.OrderCreated, data), o.ID)
}

func (s *OrderService) notifyStatusChanged(ctx context.Context, o *entity.Order, prev entity.OrderStatus) {
	if s.Publisher == nil {
		return
	}
	data := mailtpl.NewOrderStatusChangedData(s.Config, o.CustomerName, o.CustomerEmail, o.ID.String(), string(prev), string(o.Status),
		mailtpl.WithTime(o.UpdatedAt),
	)
	s.publish(ctx, mailer.OrderJob(o.CustomerEmail, o.ID.String(), mailtpl.OrderStatusChanged, data), o.ID)
}
