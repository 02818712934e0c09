package router

import (
	"time"

	"github.com/gatherly/gatherly/internal/service"
	httpx "github.com/gatherly/gatherly/pkg/http"
	"github.com/gatherly/gatherly/pkg/http/middleware"
	"github.com/gatherly/gatherly/pkg/version"
	"github.com/gatherly/gatherly/pkg/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Router struct {
	Http     *httpx.Http
	Redis    *redis.Client
	Hub      ws.Hub
	Auth     *service.AuthService
	Invites  *service.InviteService
	Contacts *service.ContactService
	Status   *service.StatusService
	Push     *service.PushService
}

func NewRouter(
	httpConf *httpx.Http,
	redisClient *redis.Client,
	hub ws.Hub,
	auth *service.AuthService,
	invites *service.InviteService,
	contacts *service.ContactService,
	status *service.StatusService,
	push *service.PushService,
) *Router {
	return &Router{
		Http:     httpConf,
		Redis:    redisClient,
		Hub:      hub,
		Auth:     auth,
		Invites:  invites,
		Contacts: contacts,
		Status:   status,
		Push:     push,
	}
}

func (rt *Router) Router() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "gatherly",
		ReadTimeout:  time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(rt.Http.IdleTimeout) * time.Second,
	})

	// cors
	app.Use(middleware.CorsMiddleware())

	// panic recover
	app.Use(middleware.ExceptionMiddleware)

	if rt.Http.AccessLog {
		app.Use(middleware.AccessLogMiddleware(rt.Http))
	}

	if rt.Http.PProf {
		app.Use(pprof.New())
	}

	if rt.Http.ExposeMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	// real-time fan-out endpoint; clients join their household channel
	// after connecting
	app.Use("/ws", ws.Upgrade)
	app.Get("/ws", ws.Handle(rt.Hub))

	api := app.Group(rt.Http.ContextPath)
	rt.routerGroup(api)

	return app
}

func (rt *Router) routerGroup(r fiber.Router) {
	auth := middleware.AuthorizationMiddleware(rt.Http.Auth, rt.Redis)

	rt.authRouter(r)
	rt.householdRouter(r, auth)
	rt.contactRouter(r, auth)
	rt.inviteRouter(r, auth)
	rt.pushRouter(r, auth)
}
