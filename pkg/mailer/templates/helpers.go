package templates

import (
	"time"

	"github.com/oksasatya/pastryjoy-api/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithNotes(notes string) Option { return func(d *EmailData) { d.Notes = notes } }

func WithItems(items []EmailItem, total string) Option {
	return func(d *EmailData) {
		d.Items = items
		d.Total = total
	}
}

// NewBaseEmailData fills the common fields from config, then applies options.
func NewBaseEmailData(cfg *config.Config, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:    cfg.LogoURL,
		SupportURL: cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewOrderCreatedData(cfg *config.Config, name, email, orderID, status string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, OrderCreated, name, email, opts...)
	d.OrderID = orderID
	d.Status = status
	return ToMap(d)
}

func NewOrderStatusChangedData(cfg *config.Config, name, email, orderID, previous, current string, opts ...Option) map[string]any {
	d := NewBaseEmailData(cfg, OrderStatusChanged, name, email, opts...)
	d.OrderID = orderID
	d.PreviousStatus = previous
	d.Status = current
	return ToMap(d)
}
