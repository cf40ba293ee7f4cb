package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aquaflow/aquaflow/internal/pkg/transactions"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// TransactionQuerier serves read-side lookups over collections and payouts.
type TransactionQuerier interface {
	GetByTransactionRef(ctx context.Context, transID string) (*transactions.C2BTransactionResponse, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) ([]transactions.C2BTransactionResponse, error)
	GetByPhoneNumber(ctx context.Context, msisdn string) ([]transactions.C2BTransactionResponse, error)
}

var transactionQuerier TransactionQuerier

// InitializeTransactionController wires the controller with its service.
func InitializeTransactionController(querier TransactionQuerier) {
	transactionQuerier = querier
}

// HandleGetTransactionByID looks up a single collection by its Safaricom
// receipt (e.g. RKTQDM7W6S).
func HandleGetTransactionByID(c *fiber.Ctx) error {
	transID := c.Params("transId")

	tx, err := transactionQuerier.GetByTransactionRef(c.Context(), transID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse("Transaction not found: " + transID))
		}
		log.Printf("Transaction lookup failed for trans_id=%s: %v", transID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Transaction lookup failed"))
	}

	return c.Status(fiber.StatusOK).JSON(OkResponse(tx, "Transaction found"))
}

// HandleGetTransactionsByAccount lists collections for an account reference.
// An unknown account yields an empty list, not a 404.
func HandleGetTransactionsByAccount(c *fiber.Ctx) error {
	accountNumber := c.Params("accountNumber")

	txs, err := transactionQuerier.GetByAccountNumber(c.Context(), accountNumber)
	if err != nil {
		log.Printf("Transaction lookup failed for account=%s: %v", accountNumber, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Transaction lookup failed"))
	}

	return c.Status(fiber.StatusOK).JSON(OkResponse(txs, fmt.Sprintf("Found %d transactions", len(txs))))
}

// HandleGetTransactionsByPhone lists collections for a phone number.
func HandleGetTransactionsByPhone(c *fiber.Ctx) error {
	msisdn := c.Params("msisdn")

	txs, err := transactionQuerier.GetByPhoneNumber(c.Context(), msisdn)
	if err != nil {
		log.Printf("Transaction lookup failed for msisdn=%s: %v", msisdn, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Transaction lookup failed"))
	}

	return c.Status(fiber.StatusOK).JSON(OkResponse(txs, fmt.Sprintf("Found %d transactions", len(txs))))
}
