package order

import (
	"context"

	"github.com/go-faster/errors"
)

// Cancel removes the order and all its lines, permitted only for the
// customer who owns it. Cancellation is a cascading hard delete, not a
// status flip; a later lookup of the id reports ErrNotFound.
func (s *Service) Cancel(ctx context.Context, orderID, customerID string) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "get order")
	}
	if o.CustomerID != customerID {
		return ErrNotOwner
	}

	if err := s.orders.Delete(ctx, orderID, s.cfg.RestockOnCancel); err != nil {
		return errors.Wrap(err, "delete order")
	}
	return nil
}

// ChangeStatus sets the order status. Administrative operation: any value of
// the closed enum is accepted, in any order, with no ownership check.
func (s *Service) ChangeStatus(ctx context.Context, orderID, status string) error {
	st, err := ParseStatus(status)
	if err != nil {
		return err
	}

	if err := s.orders.SetStatus(ctx, orderID, st); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "set status")
	}
	return nil
}

// AdminDelete unconditionally removes the order and its lines.
func (s *Service) AdminDelete(ctx context.Context, orderID string) error {
	if err := s.orders.Delete(ctx, orderID, s.cfg.RestockOnCancel); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "delete order")
	}
	return nil
}

// GetSummary returns the denormalized detail view of an order.
func (s *Service) GetSummary(ctx context.Context, orderID string) (*Summary, error) {
	sum, err := s.orders.GetSummary(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get summary")
	}
	return sum, nil
}

// ListForCustomer returns the customer's orders, newest first.
func (s *Service) ListForCustomer(ctx context.Context, customerID string) ([]ListItem, error) {
	items, err := s.orders.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return items, nil
}

// ListAll returns every order in the ledger.
func (s *Service) ListAll(ctx context.Context) ([]ListItem, error) {
	items, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return items, nil
}
