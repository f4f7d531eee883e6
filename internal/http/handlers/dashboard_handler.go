package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bukroadmin/internal/draft"
	applog "bukroadmin/internal/log"
	"bukroadmin/internal/repos"
)

type DashboardHandler struct {
	Activity *repos.ActivityRepo
	Drafts   *draft.Store
}

// GET /
func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	rows, err := h.Activity.ListLatest(50)
	if err != nil {
		applog.Error(c, "dashboard.activity.fail", err, nil)
		return renderFail(c, 500, "Could not load recent activity")
	}
	return render(c, "dashboard", fiber.Map{
		"Activity":   rows,
		"OpenDrafts": h.Drafts.Count(),
	})
}
