package bootstrap

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatherly/gatherly/internal/conf"
	"github.com/gatherly/gatherly/internal/pkg/notify"
	"github.com/gatherly/gatherly/internal/pkg/queue"
	"github.com/gatherly/gatherly/internal/repo"
	"github.com/gatherly/gatherly/internal/router"
	"github.com/gatherly/gatherly/internal/service"
	"github.com/gatherly/gatherly/pkg/cache"
	"github.com/gatherly/gatherly/pkg/database"
	"github.com/gatherly/gatherly/pkg/log"
	"github.com/gatherly/gatherly/pkg/safe"
	"github.com/gatherly/gatherly/pkg/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// App holds the wired process: HTTP surface, real-time hub and the optional
// background queue.
type App struct {
	Conf    conf.AppConfig
	HttpApp *fiber.App
	Hub     *ws.DefaultHub
	Queue   *queue.TaskQueue

	redisClient *redis.Client
}

// NewApp loads configuration and wires every layer together.
func NewApp(configFile string) (*App, error) {
	appConf := conf.NewConf(configFile)
	log.MustInit(&appConf.Log)

	redisClient, err := cache.NewRedis(appConf.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	redisCache := cache.NewRedisCache(redisClient)

	gormDB, err := database.NewDatabase(appConf.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	db := database.NewGormDB(gormDB)

	householdRepo := repo.NewHouseholdRepo(db)
	contactRepo := repo.NewContactRepo(db)
	circleRepo := repo.NewCircleRepo(db)
	inviteRepo := repo.NewInviteRepo(db)
	pushSubRepo := repo.NewPushSubscriptionRepo(db)
	deliveryLogRepo := repo.NewDeliveryLogRepo(db)

	pushSender := notify.NewExpoPushSender(appConf.Push)
	smsSender := notify.NewTwilioSmsSender(appConf.Sms)

	hub := ws.NewHub()

	notifySvc := service.NewNotifyService(hub, pushSender, smsSender, pushSubRepo, appConf.Http.BaseURL)
	deliverySvc := service.NewDeliveryService(pushSender, smsSender, pushSubRepo, deliveryLogRepo)
	statusSvc := service.NewStatusService(householdRepo, contactRepo, pushSubRepo, hub, pushSender, redisCache)
	authSvc := service.NewAuthService(householdRepo, smsSender, redisCache, appConf.Http.Auth)
	contactSvc := service.NewContactService(contactRepo, circleRepo, householdRepo)
	pushSvc := service.NewPushService(pushSubRepo)

	var taskQueue *queue.TaskQueue
	if appConf.Queue.Enable {
		taskQueue, err = queue.NewTaskQueue(&queue.Config{
			RedisClient:     redisClient,
			Concurrency:     appConf.Queue.Concurrency,
			MaxRetry:        appConf.Queue.MaxRetry,
			ShutdownTimeout: appConf.Queue.ShutdownTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create task queue: %w", err)
		}
	}

	inviteSvc := service.NewInviteService(inviteRepo, contactRepo, circleRepo, householdRepo, deliveryLogRepo, notifySvc, deliverySvc, taskQueue)
	if taskQueue != nil {
		taskQueue.RegisterDeliverHandler(queue.TaskHandlerFunc(inviteSvc.HandleDeliverTask))
	}

	rt := router.NewRouter(&appConf.Http, redisClient, hub, authSvc, inviteSvc, contactSvc, statusSvc, pushSvc)

	return &App{
		Conf:        appConf,
		HttpApp:     rt.Router(),
		Hub:         hub,
		Queue:       taskQueue,
		redisClient: redisClient,
	}, nil
}

// Run serves HTTP (and the queue worker when enabled) until SIGINT/SIGTERM,
// then shuts down gracefully.
func (a *App) Run() error {
	if a.Queue != nil {
		safe.Go(func() {
			if err := a.Queue.Start(); err != nil {
				log.Errorf("task queue stopped: %v", err)
			}
		})
	}

	addr := fmt.Sprintf("%s:%d", a.Conf.Http.Host, a.Conf.Http.Port)
	errCh := make(chan error, 1)
	safe.Go(func() {
		log.Infof("http server listening on %s", addr)
		if a.Conf.Http.TLS.CertFile != "" && a.Conf.Http.TLS.KeyFile != "" {
			errCh <- a.HttpApp.ListenTLS(addr, a.Conf.Http.TLS.CertFile, a.Conf.Http.TLS.KeyFile)
			return
		}
		errCh <- a.HttpApp.Listen(addr)
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Infof("received signal %s, shutting down", sig)
	}

	shutdownTimeout := 10 * time.Second
	if a.Conf.Http.ShutdownTimeout > 0 {
		shutdownTimeout = time.Duration(a.Conf.Http.ShutdownTimeout) * time.Second
	}
	if err := a.HttpApp.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Errorf("http shutdown error: %v", err)
	}

	if a.Queue != nil {
		a.Queue.Shutdown()
	}
	if err := a.redisClient.Close(); err != nil {
		log.Errorf("close redis error: %v", err)
	}
	return nil
}
