package controllers

import (
	"context"
	"log"
	"time"

	"github.com/aquaflow/aquaflow/app/models"
	"github.com/aquaflow/aquaflow/internal/pkg/daraja"
	"github.com/gofiber/fiber/v2"
)

// B2BProcessor reconciles asynchronous payout outcomes.
type B2BProcessor interface {
	HandleResult(ctx context.Context, payload *daraja.B2BResultPayload) (*models.B2BTransaction, error)
	HandleTimeout(ctx context.Context, payload *daraja.B2BResultPayload) (*models.B2BTransaction, error)
}

var b2bProcessor B2BProcessor

// InitializeB2BCallbackController wires the controller with its service.
func InitializeB2BCallbackController(processor B2BProcessor) {
	b2bProcessor = processor
}

// HandleB2BResult receives the outcome of a previously issued payout. The
// gateway treats this as fire-and-forget, so the ack is immediate and any
// processing error (including an unmatched payout) is only logged.
func HandleB2BResult(c *fiber.Ctx) error {
	var payload daraja.B2BResultPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("B2B result payload unreadable: %v", err)
		return c.Status(fiber.StatusOK).JSON(daraja.AcceptedAck())
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if tx, err := b2bProcessor.HandleResult(ctx, &payload); err != nil {
			log.Printf("B2B result processing failed: %v", err)
		} else {
			log.Printf("B2B result processed: id=%d, status=%s, transaction_id=%s", tx.ID, tx.Status, tx.TransactionID)
		}
	}()

	return c.Status(fiber.StatusOK).JSON(daraja.AcceptedAck())
}

// HandleB2BTimeout receives queue-timeout notifications for payouts.
func HandleB2BTimeout(c *fiber.Ctx) error {
	var payload daraja.B2BResultPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("B2B timeout payload unreadable: %v", err)
		return c.Status(fiber.StatusOK).JSON(daraja.AcceptedAck())
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		tx, err := b2bProcessor.HandleTimeout(ctx, &payload)
		switch {
		case err != nil:
			log.Printf("B2B timeout processing failed: %v", err)
		case tx != nil:
			log.Printf("B2B timeout processed: id=%d", tx.ID)
		}
	}()

	return c.Status(fiber.StatusOK).JSON(daraja.AcceptedAck())
}
