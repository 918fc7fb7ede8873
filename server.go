package sheetauth

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"
)

// ServerConf holds the http server configuration under the `server` key.
type ServerConf struct {
	Port int `yaml:"port"`
	// BasicAuth requires HTTP Basic authentication against the directory for
	// every API call; disable only for local use.
	BasicAuth         bool     `yaml:"basic_auth"`
	TrustedProxies    []string `yaml:"trusted_proxies"`
	ForwardedIPHeader string   `yaml:"forwarded_ip_header"`
}

// FiberServerConfig is the fiber.Config that is used to init the http fiber.App
var FiberServerConfig = fiber.Config{
	ReadTimeout:    3 * time.Second,
	WriteTimeout:   20 * time.Second,
	IdleTimeout:    150 * time.Second,
	ReadBufferSize: 8192,
	Network:        "tcp",
}

// NewServer creates the fiber app with the usual middleware stack.
func NewServer(conf ServerConf) *fiber.App {
	if tps := conf.TrustedProxies; len(tps) > 0 {
		FiberServerConfig.TrustedProxies = tps
		FiberServerConfig.EnableTrustedProxyCheck = true
	}
	FiberServerConfig.ProxyHeader = conf.ForwardedIPHeader
	app := fiber.New(FiberServerConfig)
	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(logger.New())
	app.Use(requestid.New())
	return app
}

// Start runs the server on the configured port and blocks.
func Start(app *fiber.App, conf ServerConf) {
	log.WithField("port", conf.Port).Info("starting http server")
	log.WithError(app.Listen(fmt.Sprintf(":%d", conf.Port))).Fatal()
}
