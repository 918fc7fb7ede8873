package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/cosmocode/sheetauth"
	"github.com/cosmocode/sheetauth/api/dirapi"
	"github.com/cosmocode/sheetauth/cmd/sheetauth/config"
	"github.com/cosmocode/sheetauth/internal/logger"
	"github.com/cosmocode/sheetauth/internal/version"
	"github.com/cosmocode/sheetauth/sheets"
	"github.com/cosmocode/sheetauth/storage"
	"github.com/cosmocode/sheetauth/storage/model"
)

func main() {
	var configFile string
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}
	config.Load(configFile)
	c := config.Get()
	logger.Init(c.Logging)
	log.WithField("version", version.VERSION).Info("loaded config")

	slot, err := storage.LoadSlotStore(c.Cache)
	if err != nil {
		log.WithError(err).Fatal("could not init snapshot slot store")
	}
	defer slot.Close()

	ctx := context.Background()
	gateway := sheets.NewGateway(ctx, c.Sheets)
	cache := storage.NewCache(
		gateway, slot,
		storage.WithTTL(c.Cache.TTL.Duration()),
		storage.WithSchemaTTL(c.Cache.SchemaTTL.Duration()),
	)
	dir := sheetauth.NewDirectory(gateway, cache, sheetauth.Options{DefaultGroup: c.Directory.DefaultGroup})

	checkSheet(ctx, dir)

	app := sheetauth.NewServer(c.Server)
	dirapi.Register(app.Group("/api/v1"), dir, dirapi.Options{BasicAuth: c.Server.BasicAuth})
	sheetauth.Start(app, c.Server)
}

// checkSheet validates the auth sheet once at startup. Configuration and
// authentication problems abort the service; a transiently unreachable sheet
// does not.
func checkSheet(ctx context.Context, dir *sheetauth.Directory) {
	valid, err := dir.ValidateSchema(ctx)
	if err != nil {
		switch err.(type) {
		case model.ConfigurationError, model.AuthenticationError:
			log.WithError(err).Fatal("cannot reach the auth sheet")
		default:
			log.WithError(err).Warn("auth sheet unreachable at startup, continuing")
			return
		}
	}
	if !valid {
		log.Fatal("auth sheet header is missing required columns")
	}
	log.Info("validated auth sheet")
}
