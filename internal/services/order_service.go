package services

import (
	"context"

	"bukroadmin/internal/api"
	"bukroadmin/internal/domain"
	"bukroadmin/internal/repos"
)

type OrderService struct {
	API      *api.Client
	Activity *repos.ActivityRepo
}

func NewOrderService(client *api.Client, activity *repos.ActivityRepo) *OrderService {
	return &OrderService{API: client, Activity: activity}
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.API.Orders(ctx)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) error {
	err := s.API.UpdateOrderStatus(ctx, id, status)
	if s.Activity != nil {
		_ = s.Activity.Record("order.status", "order", id, status, err)
	}
	return err
}
