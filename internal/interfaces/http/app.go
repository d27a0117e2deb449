package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// AppConfig opciones del servidor Fiber.
type AppConfig struct {
	Name         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

// NewApp crea la aplicación Fiber con el manejador de errores del sobre, recover, request id
// y log de peticiones, y registra las rutas. Swagger se monta aparte porque depende del archivo generado.
func NewApp(cfg AppConfig, deps RouterDeps) *fiber.App {
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 1 << 20
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: ErrorHandler(deps.Logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(deps.Logger))
	Router(app, deps)
	return app
}
