package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"bukroadmin/internal/api"
	"bukroadmin/internal/domain"
	"bukroadmin/internal/draft"
	"bukroadmin/internal/repos"
)

// CatalogService fronts the backend's product and category endpoints
// and records every mutation in the panel's activity log.
type CatalogService struct {
	API      *api.Client
	Activity *repos.ActivityRepo
}

func NewCatalogService(client *api.Client, activity *repos.ActivityRepo) *CatalogService {
	return &CatalogService{API: client, Activity: activity}
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.API.Categories(ctx)
}

func (s *CatalogService) Product(ctx context.Context, id string) (domain.Product, error) {
	return s.API.Product(ctx, id)
}

// ProductPage fetches what the product list renders. The two calls are
// independent, so they run in parallel.
func (s *CatalogService) ProductPage(ctx context.Context) ([]domain.Product, []domain.Category, error) {
	var (
		products   []domain.Product
		categories []domain.Category
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.API.Products(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.API.Categories(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return products, categories, nil
}

// Submit pushes an assembled draft to the backend. The failed case is
// recorded too; the caller keeps the draft intact for another try.
func (s *CatalogService) Submit(ctx context.Context, sub *draft.Submission) error {
	err := s.API.SubmitProduct(ctx, sub)
	action := "product.create"
	if sub.IsUpdate() {
		action = "product.update"
	}
	s.record(action, "product", sub.ProductID, err)
	return err
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	err := s.API.DeleteProduct(ctx, id)
	s.record("product.delete", "product", id, err)
	return err
}

func (s *CatalogService) CreateCategory(ctx context.Context, form api.CategoryForm) error {
	err := s.API.CreateCategory(ctx, form)
	s.record("category.create", "category", form.Slug, err)
	return err
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, form api.CategoryForm) error {
	err := s.API.UpdateCategory(ctx, id, form)
	s.record("category.update", "category", id, err)
	return err
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	err := s.API.DeleteCategory(ctx, id)
	s.record("category.delete", "category", id, err)
	return err
}

func (s *CatalogService) record(action, entity, id string, err error) {
	if s.Activity == nil {
		return
	}
	_ = s.Activity.Record(action, entity, id, "", err)
}
