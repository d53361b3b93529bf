// Package api provides the HTTP API for the application
package api

import (
	stdhttp "net/http"
	"time"

	"storewatch/internal/platform/config"
	"storewatch/internal/platform/logger"
	phttp "storewatch/internal/platform/net/http"
	"storewatch/internal/platform/store"

	"storewatch/internal/modkit"
	"storewatch/internal/modkit/httpkit"
	"storewatch/internal/modkit/module"
	"storewatch/internal/modkit/swaggerkit"

	metamod "storewatch/internal/services/api/meta/module"
	reportsmod "storewatch/internal/services/reports/module"
	reportworkmod "storewatch/internal/services/reportwork/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}

	// Construct the reportwork module first and extract its Enqueuer port.
	// The trigger path (reports) and the worker loop (reportwork) share one
	// job table but have independent capabilities; only the Enqueuer
	// capability crosses the module boundary.
	rwOpts := reportworkmod.FromConfig(deps.Cfg)
	reportWork := reportworkmod.New(deps, rwOpts)
	enq := module.MustPortsOf[reportworkmod.Ports](reportWork).Enqueuer

	reports := reportsmod.New(
		deps,
		modkit.WithPorts(reportsmod.Ports{Enqueuer: enq}),
	)

	mods := []module.Module{
		metamod.New(deps),
		reportWork, // include worker so its ports are registered
		reports,    // HTTP module that depends on reportwork's Enqueuer
	}

	startedAt := time.Now()

	// bare liveness route, mounted outside the versioned prefix
	httpkit.Get(r, "/health", func(_ *stdhttp.Request) (any, error) {
		return struct {
			OK      bool   `json:"ok"`
			Service string `json:"service"`
			Started string `json:"started"`
			Now     string `json:"now"`
		}{
			OK:      true,
			Service: "storewatch-api",
			Started: startedAt.UTC().Format(time.RFC3339),
			Now:     time.Now().UTC().Format(time.RFC3339),
		}, nil
	})

	// artifact downloads: the public URL get_report hands out resolves here
	files := stdhttp.FileServer(stdhttp.Dir(rwOpts.ArtifactDir))
	r.Handle(rwOpts.PublicPrefix+"/*", stdhttp.StripPrefix(rwOpts.PublicPrefix+"/", files))

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
