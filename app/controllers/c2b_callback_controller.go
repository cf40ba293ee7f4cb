package controllers

import (
	"context"
	"log"
	"time"

	"github.com/aquaflow/aquaflow/app/models"
	"github.com/aquaflow/aquaflow/internal/pkg/daraja"
	"github.com/gofiber/fiber/v2"
)

// C2BProcessor handles inbound collection callbacks.
type C2BProcessor interface {
	HandleValidation(ctx context.Context, payload *daraja.C2BCallbackPayload) (*models.C2BTransaction, error)
	HandleConfirmation(ctx context.Context, payload *daraja.C2BCallbackPayload) (*models.C2BTransaction, error)
}

// URLRegistrar registers the callback URLs with the gateway.
type URLRegistrar interface {
	RegisterC2BURLs(ctx context.Context) (*daraja.C2BRegisterURLResponse, error)
}

var (
	c2bProcessor C2BProcessor
	urlRegistrar URLRegistrar
)

// InitializeC2BCallbackController wires the controller with its services.
func InitializeC2BCallbackController(processor C2BProcessor, registrar URLRegistrar) {
	c2bProcessor = processor
	urlRegistrar = registrar
}

// HandleC2BValidation is called by Safaricom before a payment is processed.
// It must answer inside the gateway's deadline and never signal failure; a
// failed ack would fail a live customer payment.
func HandleC2BValidation(c *fiber.Ctx) error {
	var payload daraja.C2BCallbackPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("C2B validation payload unreadable: %v", err)
		return c.Status(fiber.StatusOK).JSON(daraja.AcceptedAck())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := c2bProcessor.HandleValidation(ctx, &payload); err != nil {
		log.Printf("C2B validation processing failed for trans_id=%s: %v", payload.TransID, err)
	}

	return c.Status(fiber.StatusOK).JSON(daraja.AcceptedAck())
}

// HandleC2BConfirmation is called by Safaricom after a payment completes.
// Processing (including the disbursement trigger) runs detached; the ack
// must not wait for it. A crash between ack and completed processing loses
// the disbursement trigger, which the design accepts.
func HandleC2BConfirmation(c *fiber.Ctx) error {
	var payload daraja.C2BCallbackPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("C2B confirmation payload unreadable: %v", err)
		return c.Status(fiber.StatusOK).JSON(daraja.AcceptedAck())
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if tx, err := c2bProcessor.HandleConfirmation(ctx, &payload); err != nil {
			log.Printf("C2B confirmation processing failed: trans_id=%s: %v", payload.TransID, err)
		} else {
			log.Printf("C2B confirmation processed: trans_id=%s, status=%s", tx.TransID, tx.Status)
		}
	}()

	return c.Status(fiber.StatusOK).JSON(daraja.AcceptedAck())
}

// HandleC2BRegisterURLs registers the validation/confirmation URLs with
// Safaricom. One-time setup endpoint, not a callback.
func HandleC2BRegisterURLs(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	resp, err := urlRegistrar.RegisterC2BURLs(ctx)
	if err != nil {
		log.Printf("C2B URL registration failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse("C2B URL registration failed: " + err.Error()))
	}

	return c.Status(fiber.StatusOK).JSON(OkResponse(resp, "C2B URLs registered successfully"))
}
