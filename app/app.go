// Package app is the sample Swallow application: a job board with a
// landing page and documentation.
package app

import (
	"fmt"

	"github.com/dmitrymomot/swallow"
	"github.com/dmitrymomot/swallow/app/controllers"
	"github.com/dmitrymomot/swallow/app/models"
	"github.com/dmitrymomot/swallow/middlewares"
	"github.com/dmitrymomot/swallow/pkg/model"
	"github.com/dmitrymomot/swallow/pkg/query"
	"github.com/dmitrymomot/swallow/pkg/views"
)

// Config holds the application's dependencies.
type Config struct {
	DB           query.Executor
	Docs         *views.Docs
	QueryOptions []query.Option
	PerPage      int
}

// Options returns the swallow options mounting the application: its
// routes, views and database.
func Options(cfg Config) ([]swallow.Option, error) {
	jobs := models.NewJobs(cfg.DB, model.WithQueryOptions(cfg.QueryOptions...))
	home := controllers.NewHomeController(jobs, cfg.PerPage)

	actions := swallow.NewActions()
	if err := home.Register(actions); err != nil {
		return nil, fmt.Errorf("register home actions: %w", err)
	}

	return []swallow.Option{
		swallow.WithDatabase(cfg.DB),
		swallow.WithViews(Views(cfg.Docs)),
		swallow.WithRoutes(Routes(actions)),
	}, nil
}

// Routes declares the application routes. Actions are resolved here, at
// registration time.
func Routes(actions *swallow.Actions) func(r swallow.Router) {
	return func(r swallow.Router) {
		r.GET("/", actions.Handler("HomeController@index"))
		r.GET("/user/{user}/about", actions.Handler("HomeController@index"), middlewares.Auth())
		r.GET("/docs", actions.Handler("HomeController@docs"))
		r.GET("/jobs", actions.Handler("HomeController@jobs"))
		r.GET("/welcome", actions.Handler("HomeController@welcome"))
	}
}

// Views registers the error page, the landing page and the docs page.
func Views(docs *views.Docs) *swallow.Views {
	v := swallow.NewViews().
		Register(swallow.ErrorViewName, func(_ swallow.Context, data any) (swallow.Component, error) {
			page, _ := data.(swallow.ErrorPage)
			return views.Error(page.StatusCode, page.Message, page.Trace), nil
		}).
		Register(controllers.ViewIndex, func(_ swallow.Context, data any) (swallow.Component, error) {
			features, ok := data.([]views.Feature)
			if !ok {
				features = views.DefaultFeatures
			}
			return views.Index(features), nil
		})

	if docs != nil {
		v.Register(controllers.ViewDocs, func(c swallow.Context, data any) (swallow.Component, error) {
			name, _ := data.(string)
			if name == "" {
				name = "index"
			}
			return docs.Page(c, name)
		})
	}
	return v
}
