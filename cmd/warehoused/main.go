package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"warehouse-sim-backend/config"
	"warehouse-sim-backend/internal/api"
	"warehouse-sim-backend/internal/db"
	"warehouse-sim-backend/internal/eventlog"
	"warehouse-sim-backend/internal/metrics"
	"warehouse-sim-backend/internal/model"
	"warehouse-sim-backend/internal/monitor"
	"warehouse-sim-backend/internal/notification"
	"warehouse-sim-backend/internal/store"
	"warehouse-sim-backend/internal/task"
	"warehouse-sim-backend/internal/warehouse"
	"warehouse-sim-backend/internal/worker"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "warehoused ", log.LstdFlags)

	// A missing .env is fine outside local development.
	if err := godotenv.Load(); err == nil {
		logger.Println("environment loaded from .env")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Printf("database initialized successfully (%s)", cfg.Database.Driver)
	appStore := store.NewGormStore(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event log: stdout always, the database when persistence is on.
	events := eventlog.Multi{eventlog.NewStdLogger(logger, eventlog.ParseLevel(cfg.EventLog.Level))}
	var buffer *eventlog.Buffer
	if cfg.EventLog.Persist {
		buffer = eventlog.NewBuffer(appStore, cfg.EventLog.FlushSize, cfg.EventLog.FlushInterval)
		buffer.Start()
		events = append(events, buffer)
	}

	wh, err := warehouse.New(cfg, events)
	if err != nil {
		logger.Fatalf("failed to build warehouse: %v", err)
	}

	m := metrics.New()
	wh.OnResult = func(batchID string, res task.Result) {
		m.ObserveTask(res)
		if err := appStore.SaveTaskResults(ctx, []model.TaskRecord{store.NewTaskRecord(batchID, res)}); err != nil {
			logger.Printf("failed to save result of task %s: %v", res.TaskID, err)
		}
	}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		notifier := notification.NewNotifier(cfg.WorkerPool.Size, appStore, webpushOptions)
		notifier.Start(ctx)
		wh.OnBatchDone = func(summary worker.Summary) {
			notifier.Dispatch(summary)
		}
	} else {
		logger.Println("VAPID keys not configured, push notifications disabled")
	}

	wh.Start(ctx)

	if cfg.Monitor.Enabled {
		monitorSvc := monitor.NewService(cfg.Monitor.Interval, wh, appStore, m)
		go monitorSvc.Run(ctx)
	}

	// Initialize router
	handler := api.NewHandler(wh, appStore, webpushOptions)
	router := api.NewRouter(handler, cfg.Server, m.Handler())
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}
	cancel()
	if buffer != nil {
		buffer.Stop()
	}

	logger.Println("Server gracefully stopped")
}
