package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/config"
	"github.com/oksasatya/pastryjoy-api/pkg/helpers"
	"github.com/oksasatya/pastryjoy-api/pkg/mailer"
)

// email_worker consumes order notification jobs and sends them via Mailgun.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQOrdersQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	if mg == nil {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("amqp channel")
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos")
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQOrdersQueue); err != nil {
		logger.WithError(err).Fatal("queue declare")
	}

	consumer := cfg.AppName + "-email-worker"
	msgs, err := ch.Consume(cfg.RabbitMQOrdersQueue, consumer, false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			handle(ctx, logger, mg, cfg.EmailTimezone, msg)
		}
	}()

	helpers.LogInfo(logger, "email worker listening", logrus.Fields{"queue": cfg.RabbitMQOrdersQueue})
	<-ctx.Done()
	logger.Info("shutting down...")
	_ = ch.Cancel(consumer, false)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}

func handle(ctx context.Context, logger *logrus.Logger, mg *mailer.Mailgun, timezone string, msg amqp.Delivery) {
	fields := logrus.Fields{"message_id": msg.MessageId}

	var job mailer.EmailJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		helpers.LogError(logger, "bad message", err, fields)
		_ = msg.Nack(false, false)
		return
	}
	fields["template"] = job.Template
	fields["to"] = job.To
	if job.OrderID != "" {
		fields["order_id"] = job.OrderID
	}

	subject, text, html, err := helpers.RenderJob(&job, timezone)
	if err != nil {
		// a template error will not fix itself; drop instead of requeueing
		helpers.LogError(logger, "render failed", err, fields)
		_ = msg.Nack(false, false)
		return
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	id, err := mg.Send(c, job.To, subject, text, html, job.Tags...)
	if err != nil {
		helpers.LogError(logger, "send failed", err, fields)
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}
	fields["mailgun_id"] = id
	helpers.LogInfo(logger, "email sent", fields)
	_ = msg.Ack(false)
}
