package handler

import (
	"math/rand/v2"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/membership-site/internal/view"
)

// memberImages are served from /static/img.
var memberImages = []string{"member1.svg", "member2.svg", "member3.svg"}

type HomeHandler struct {
	pick func(n int) int
}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{pick: rand.IntN}
}

// Index renders the landing page, greeting the member when signed in.
func (h *HomeHandler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageIndex, newPage(c, "Home"))
}

// Members renders the members-only page with one of the member images.
// Route must be guarded by middleware.RequireSession.
func (h *HomeHandler) Members(c echo.Context) error {
	p := newPage(c, "Members")
	p.Data = memberImages[h.pick(len(memberImages))]
	return c.Render(http.StatusOK, view.PageMembers, p)
}
