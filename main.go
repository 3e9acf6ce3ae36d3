// File: pmove/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pmove/config"
	"pmove/cron"
	"pmove/database"
	draftRepo "pmove/database/repository/draft"
	recordsRepo "pmove/database/repository/records"
	"pmove/handlers"
	"pmove/metrics"
	"pmove/middleware"
	"pmove/routes"
	"pmove/services/gateway"
	"pmove/services/notification"
	"pmove/services/reservation"
	"pmove/services/session"
	"pmove/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitRedis()

	rootCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(rootCtx, 30*time.Second,
		[]*redis.Client{utils.GetDraftCacheClient(), utils.GetSessionCacheClient()}, database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// external API.
	api := gateway.NewClient(config.AppConfig.APIURL, config.AppConfig.APITimeout, logger)

	// repositories.
	drafts := draftRepo.NewRedisDraftRepo(utils.GetDraftCacheClient(), config.AppConfig.DraftTTL,
		utils.DraftLockTTL(config.AppConfig.APITimeout))
	records, err := recordsRepo.NewMongoRecordRepo(database.Database())
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize ticket archive: %v", err)
	}

	// confirmation e-mails.
	queue := asynq.NewClient(cron.RedisOpt())
	defer queue.Close()
	notifier, err := notification.NewQueueNotifier(queue, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	worker := cron.InitConfirmationWorker(&notification.ConfirmationSender{Mailer: api}, logger)

	// services.
	registry := metrics.NewRegistry()
	payloads := reservation.PayloadBuilder{BaseURL: config.AppConfig.QRBaseURL}

	reservationService := reservation.NewDefaultReservationService(drafts, api, api, payloads, logger)
	reservationService.Archive = records
	reservationService.Notifier = notifier
	reservationService.Metrics = registry

	sessions := session.NewManager(utils.GetSessionCacheClient(), api, config.AppConfig.SessionTTL, logger)

	accountHandler := handlers.NewAccountHandler(sessions, payloads)
	ticketsHandler := &handlers.TicketsHandler{Store: api, Archive: records, Payloads: payloads}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Auth: sessions,

		// Account endpoints.
		RegisterUserHandler:  accountHandler.RegisterHandler,
		LoginUserHandler:     accountHandler.LoginHandler,
		LogoutUserHandler:    accountHandler.LogoutHandler,
		GetProfileHandler:    accountHandler.GetProfileHandler,
		UpdateProfileHandler: accountHandler.UpdateProfileHandler,

		// Reservation endpoints.
		Reservation: handlers.NewReservationHandler(reservationService),

		// Ticket endpoints.
		ListTicketsHandler:   ticketsHandler.ListTickets,
		TicketHistoryHandler: ticketsHandler.History,
		DeleteTicketHandler:  ticketsHandler.DeleteTicket,
		ListCarriersHandler:  handlers.ListCarriers,

		Metrics: gin.WrapH(registry.Handler()),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	if err := database.Close(ctx); err != nil {
		logger.Sugar().Warnf("main: failed to close MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
