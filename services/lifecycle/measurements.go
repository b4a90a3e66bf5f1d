package lifecycle

import (
	"context"
	"fmt"
	"strings"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"

	"go.uber.org/zap"
)

func validateMeasurements(in models.MeasurementInput) error {
	fields, ok := models.MeasurementFields[in.Category]
	if !ok {
		return models.Validation("unknown measurement category %q", in.Category)
	}
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f] = true
	}
	for name, v := range in.Values {
		if !known[name] {
			return models.Validation("%s has no measurement %q", in.Category, name)
		}
		if v <= 0 {
			return models.Validation("%s must be a positive length in cm", name)
		}
	}
	return nil
}

// SaveMeasurements replaces one category of the acting customer's
// measurement book. An empty set of values removes the category.
func (c *Coordinator) SaveMeasurements(ctx context.Context, actor models.Actor, in models.MeasurementInput) (*models.MeasurementBook, error) {
	if err := Authorize(actor, CmdSaveMeasurements); err != nil {
		return nil, err
	}
	if err := validateMeasurements(in); err != nil {
		return nil, err
	}

	var book models.MeasurementBook
	err := c.withBooking(ctx, "measurements:"+actor.ID, func() error {
		ref := models.MeasurementRef(actor.ID)
		now := c.now()
		if err := c.ledger.Get(ctx, ref, &book); err != nil {
			if !isNotFound(err) {
				return err
			}
			book = models.MeasurementBook{CustomerID: actor.ID, CreatedAt: now}
		}
		if book.Categories == nil {
			book.Categories = map[string]map[string]float64{}
		}
		if name := strings.TrimSpace(in.CustomerName); name != "" {
			book.CustomerName = name
		}
		if phone := strings.TrimSpace(in.Phone); phone != "" {
			book.Phone = phone
		}
		if len(in.Values) == 0 {
			delete(book.Categories, in.Category)
		} else {
			book.Categories[in.Category] = in.Values
		}
		book.UpdatedAt = now
		if err := c.ledger.Set(ctx, ref, book); err != nil {
			return fmt.Errorf("failed to save measurements of %s: %w", actor.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("Measurements saved", zap.String("customerId", actor.ID), zap.String("category", in.Category))
	return &book, nil
}

// GetMeasurements reads customerID's book. Customers can only read their
// own.
func (c *Coordinator) GetMeasurements(ctx context.Context, actor models.Actor, customerID string) (*models.MeasurementBook, error) {
	if err := Authorize(actor, CmdReadMeasurements); err != nil {
		return nil, err
	}
	if err := authorizeOwner(actor, customerID); err != nil {
		return nil, err
	}
	var book models.MeasurementBook
	if err := c.ledger.Get(ctx, models.MeasurementRef(customerID), &book); err != nil {
		if isNotFound(err) {
			return nil, models.NotFound("no measurements for %s", customerID)
		}
		return nil, err
	}
	return &book, nil
}

// ListMeasurements returns every customer's book for the tailor.
func (c *Coordinator) ListMeasurements(ctx context.Context, actor models.Actor) ([]models.MeasurementBook, error) {
	if err := Authorize(actor, CmdListMeasurements); err != nil {
		return nil, err
	}
	return ledgerRepo.QueryAs[models.MeasurementBook](ctx, c.ledger, models.CollMeasurements, "", nil)
}
