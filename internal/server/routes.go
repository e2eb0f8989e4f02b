package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/gosuda/trackly/internal/activity"
	v1 "github.com/gosuda/trackly/internal/api/v1"
	"github.com/gosuda/trackly/internal/api/ws"
)

func registerAPIRoutes(api huma.API, store v1.DataStore, loader activity.SnapshotSource, recorder v1.ActivityRecorder) {
	v1.RegisterProjectRoutes(api, store, recorder)
	v1.RegisterActivityRoutes(api, store, loader, recorder)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/activity", hub.ServeActivity)
}
