package orders_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookstack/orders-management-api/orders"
)

// fakeStorage is an in-memory orders.Storage for handler and validator tests.
type fakeStorage struct {
	byTitle      map[string]orders.Order
	byISBN       map[string]orders.Order
	byID         map[uuid.UUID]orders.Order
	createdToday int
	inserted     []orders.Order
	insertErr    error
	readErr      error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		byTitle: make(map[string]orders.Order),
		byISBN:  make(map[string]orders.Order),
		byID:    make(map[uuid.UUID]orders.Order),
	}
}

func (s *fakeStorage) add(order orders.Order) {
	s.byTitle[order.Title] = order
	s.byISBN[order.ISBN] = order
	s.byID[order.ID] = order
}

func (s *fakeStorage) FindByTitle(_ context.Context, title string) (*orders.Order, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}

	if order, ok := s.byTitle[title]; ok {
		return &order, nil
	}

	return nil, nil
}

func (s *fakeStorage) FindByISBN(_ context.Context, isbn string) (*orders.Order, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}

	if order, ok := s.byISBN[isbn]; ok {
		return &order, nil
	}

	return nil, nil
}

func (s *fakeStorage) FindByID(_ context.Context, id uuid.UUID) (*orders.Order, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}

	if order, ok := s.byID[id]; ok {
		return &order, nil
	}

	return nil, nil
}

func (s *fakeStorage) CountCreatedBetween(_ context.Context, _ time.Time, _ time.Time) (int, error) {
	if s.readErr != nil {
		return 0, s.readErr
	}

	return s.createdToday, nil
}

func (s *fakeStorage) Insert(_ context.Context, order orders.Order) error {
	if s.insertErr != nil {
		return s.insertErr
	}

	s.inserted = append(s.inserted, order)
	s.add(order)

	return nil
}
