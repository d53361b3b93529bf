package main

import (
	"context"

	"storewatch/internal/modkit"
	"storewatch/internal/modkit/module"
	"storewatch/internal/platform/config"
	"storewatch/internal/platform/logger"
	"storewatch/internal/platform/store"

	reportworkmod "storewatch/internal/services/reportwork/module"
)

func main() {
	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dbCfg.MustString("DBURL"),
			MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
			LogSQL:      dbCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	mod := reportworkmod.New(deps, reportworkmod.FromConfig(root))
	module.Register(mod.Name(), mod.Ports())

	ports := module.MustPortsOf[reportworkmod.Ports](mod)

	if err := ports.Worker.Run(context.Background()); err != nil {
		l.Fatal().Err(err).Msg("reportwork worker failed")
	}
}
