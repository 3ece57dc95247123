package controllers

import (
	"net/http"

	"github.com/dmitrymomot/swallow"
	"github.com/dmitrymomot/swallow/app/models"
	"github.com/dmitrymomot/swallow/pkg/model"
	"github.com/dmitrymomot/swallow/pkg/query"
	"github.com/dmitrymomot/swallow/pkg/views"
)

// Home is the name the controller's actions are registered under.
const Home = "HomeController"

// DefaultPerPage is the page size of job listings.
const DefaultPerPage = 20

// Views rendered by the controller.
const (
	ViewDocs  = "docs"
	ViewIndex = "index"
)

// HomeController serves the landing page, the docs and the job listings.
type HomeController struct {
	jobs    *model.Model[models.Job]
	perPage int
}

// NewHomeController creates the controller over the jobs model.
func NewHomeController(jobs *model.Model[models.Job], perPage int) *HomeController {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return &HomeController{jobs: jobs, perPage: perPage}
}

// Register adds the controller's actions to actions.
func (h *HomeController) Register(actions *swallow.Actions) error {
	return actions.Controller(Home, map[string]swallow.HandlerFunc{
		"index":   h.Index,
		"docs":    h.Docs,
		"jobs":    h.Jobs,
		"welcome": h.Welcome,
	})
}

// jobsPage is the JSON shape of an offset-paginated listing.
type jobsPage struct {
	Data    []query.Row `json:"data"`
	Page    int         `json:"page"`
	PerPage int         `json:"perPage"`
}

// Index lists jobs by offset pages, honoring ?page=.
func (h *HomeController) Index(c swallow.Context) error {
	page := query.PageFromRequest(c.Request(), 1)

	rows, err := c.Table(models.JobsTable).Paginate(c, h.perPage, page)
	if err != nil {
		if query.IsValidation(err) {
			return swallow.NewHTTPError(http.StatusBadRequest, err.Error(), swallow.WithError(err))
		}
		return err
	}
	if rows == nil {
		rows = []query.Row{}
	}

	return c.JSON(http.StatusOK, jobsPage{Data: rows, Page: page, PerPage: h.perPage})
}

// Jobs lists mapped jobs by cursor, honoring ?cursor=.
func (h *HomeController) Jobs(c swallow.Context) error {
	page, err := h.jobs.CursorPaginate(c, h.jobs.Query(), h.perPage, query.RequestURL(c.Request()))
	if err != nil {
		if query.IsValidation(err) {
			return swallow.NewHTTPError(http.StatusBadRequest, err.Error(), swallow.WithError(err))
		}
		return err
	}
	if page.Data == nil {
		page.Data = []models.Job{}
	}
	return c.JSON(http.StatusOK, page)
}

// Docs renders the documentation page.
func (h *HomeController) Docs(c swallow.Context) error {
	return c.View(http.StatusOK, ViewDocs, "index")
}

// Welcome renders the landing page.
func (h *HomeController) Welcome(c swallow.Context) error {
	return c.View(http.StatusOK, ViewIndex, views.DefaultFeatures)
}
