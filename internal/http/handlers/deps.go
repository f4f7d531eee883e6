package handlers

import (
	"github.com/jmoiron/sqlx"

	"bukroadmin/internal/api"
	"bukroadmin/internal/config"
	"bukroadmin/internal/draft"
	"bukroadmin/internal/repos"
	"bukroadmin/internal/services"
)

type Deps struct {
	Drafts *draft.Store

	DashboardHandler *DashboardHandler
	ProductHandler   *ProductHandler
	DraftHandler     *DraftHandler
	CategoryHandler  *CategoryHandler
	OrderHandler     *OrderHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, client *api.Client) *Deps {
	activity := repos.NewActivityRepo(db)
	catalogSvc := services.NewCatalogService(client, activity)
	orderSvc := services.NewOrderService(client, activity)
	drafts := draft.NewStore()

	return &Deps{
		Drafts:           drafts,
		DashboardHandler: &DashboardHandler{Activity: activity, Drafts: drafts},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		DraftHandler:     &DraftHandler{Catalog: catalogSvc, Drafts: drafts, ScratchDir: cfg.ScratchDir},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc},
	}
}
