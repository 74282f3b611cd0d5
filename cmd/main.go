package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/d1sq/BMS-BookingEngine/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/d1sq/BMS-BookingEngine/internal/api/handlers/create_booking"
	exportCalendarHandler "github.com/d1sq/BMS-BookingEngine/internal/api/handlers/export_calendar"
	getAvailableSlotsHandler "github.com/d1sq/BMS-BookingEngine/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/d1sq/BMS-BookingEngine/internal/api/handlers/get_booking"
	openPaymentHandler "github.com/d1sq/BMS-BookingEngine/internal/api/handlers/open_payment"
	paymentWebhookHandler "github.com/d1sq/BMS-BookingEngine/internal/api/handlers/payment_webhook"
	recordPaymentHandler "github.com/d1sq/BMS-BookingEngine/internal/api/handlers/record_payment"
	"github.com/d1sq/BMS-BookingEngine/internal/api/middleware"
	"github.com/d1sq/BMS-BookingEngine/internal/config"
	"github.com/d1sq/BMS-BookingEngine/internal/infra/jobs"
	bookingRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/booking"
	businessRepo "github.com/d1sq/BMS-BookingEngine/internal/infra/storage/business"
	"github.com/d1sq/BMS-BookingEngine/internal/integrations/mailer"
	"github.com/d1sq/BMS-BookingEngine/internal/integrations/paygate"
	"github.com/d1sq/BMS-BookingEngine/internal/integrations/pushgate"
	bookingsService "github.com/d1sq/BMS-BookingEngine/internal/service/bookings"
	"github.com/d1sq/BMS-BookingEngine/internal/service/dedup"
	"github.com/d1sq/BMS-BookingEngine/internal/service/notify"
	cancelBookingUC "github.com/d1sq/BMS-BookingEngine/internal/usecase/cancel_booking"
	confirmPaymentUC "github.com/d1sq/BMS-BookingEngine/internal/usecase/confirm_payment"
	createBookingUC "github.com/d1sq/BMS-BookingEngine/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/d1sq/BMS-BookingEngine/internal/usecase/get_available_slots"
	openPaymentUC "github.com/d1sq/BMS-BookingEngine/internal/usecase/open_payment"
	recordPaymentUC "github.com/d1sq/BMS-BookingEngine/internal/usecase/record_payment"
	"github.com/d1sq/BMS-BookingEngine/pkg/dbmetrics"
	"github.com/d1sq/BMS-BookingEngine/pkg/logger"
	"github.com/d1sq/BMS-BookingEngine/pkg/metrics"
	"github.com/d1sq/BMS-BookingEngine/pkg/simpletxmanager"
	"github.com/d1sq/BMS-BookingEngine/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting BMS-BookingEngine...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Подключаемся к Redis (если включен); при отказе защита от дублей
	// деградирует до проверки по БД
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Failed to ping redis at %s: %v, fingerprint guard will fall back to DB", cfg.Redis.Addr, err)
		} else {
			log.Info("Successfully connected to redis (addr=%s)", cfg.Redis.Addr)
		}
		defer redisClient.Close()
	}

	// Инициализируем интеграционных клиентов
	gatewayClient := paygate.NewClient(
		cfg.Gateway.URL,
		time.Duration(cfg.Gateway.Timeout)*time.Second,
		log,
	)
	mailerClient := mailer.NewClient(
		cfg.Mailer.URL,
		time.Duration(cfg.Mailer.Timeout)*time.Second,
		log,
	)
	pushClient := pushgate.NewClient(
		cfg.Pushgate.URL,
		time.Duration(cfg.Pushgate.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (Gateway=%s, Mailer=%s, Pushgate=%s)",
		cfg.Gateway.URL, cfg.Mailer.URL, cfg.Pushgate.URL)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		businessRepository *businessRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		businessRepository = businessRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		businessRepository = businessRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	guard := dedup.NewGuard(
		redisClient,
		bookingRepository,
		time.Duration(cfg.Booking.FingerprintWindow)*time.Second,
		log,
		&dedup.RealTimeProvider{},
	)

	var notifyMetrics notify.Metrics
	if cfg.Metrics.Enabled {
		notifyMetrics = metricsCollector
	}
	dispatcher := notify.NewDispatcher(
		[]notify.Channel{
			notify.NewEmailChannel(mailerClient),
			notify.NewPushChannel(pushClient),
		},
		notify.DispatcherOptions{
			Workers:      cfg.Notifications.Workers,
			QueueSize:    cfg.Notifications.QueueSize,
			MaxAttempts:  cfg.Notifications.MaxAttempts,
			RetryBackoff: time.Duration(cfg.Notifications.RetryBackoff) * time.Millisecond,
			SendTimeout:  time.Duration(cfg.Notifications.SendTimeout) * time.Second,
		},
		log,
		notifyMetrics,
	)

	bookingSvc := bookingsService.NewService(bookingRepository, businessRepository, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		businessRepository,
		guard,
		dispatcher,
		txMgr,
		cfg.Server.PublicBaseURL,
		cfg.Booking.ReservationMinutes,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		businessRepository,
		log,
	)
	openPaymentUseCase := openPaymentUC.NewUseCase(
		bookingRepository,
		businessRepository,
		gatewayClient,
		log,
	)
	recordPaymentUseCase := recordPaymentUC.NewUseCase(
		bookingRepository,
		businessRepository,
		paygate.VerifyPaymentSignature,
		log,
	)
	confirmPaymentUseCase := confirmPaymentUC.NewUseCase(
		bookingRepository,
		businessRepository,
		paygate.VerifyWebhookSignature,
		dispatcher,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		dispatcher,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	exportCalendar := exportCalendarHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	openPayment := openPaymentHandler.NewHandler(openPaymentUseCase, log)
	recordPayment := recordPaymentHandler.NewHandler(recordPaymentUseCase, log)
	paymentWebhook := paymentWebhookHandler.NewHandler(confirmPaymentUseCase, log)

	// Запускаем свипер просроченных резерваций
	sweeper := jobs.NewExpirySweeper(
		bookingRepository,
		dispatcher,
		time.Duration(cfg.Booking.SweepInterval)*time.Second,
		log,
	)
	sweeper.Start()

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// Доступные слоты услуги на дату
	api.HandleFunc("/businesses/{businessId}/services/{serviceId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Создание бронирования
	api.HandleFunc("/businesses/{businessId}/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Экспорт бронирования в календарь
	api.HandleFunc("/bookings/{bookingId}/calendar.ics", exportCalendar.Handle).Methods(http.MethodGet)

	// Отмена бронирования по токену
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Платежи
	api.HandleFunc("/bookings/{bookingId}/payment-order", openPayment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/payment", recordPayment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/payments/webhook", paymentWebhook.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновые задачи
	sweeper.Stop()
	log.Info("Expiry sweeper stopped")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся доставки уведомлений из очереди
	dispatcher.Close()
	log.Info("Notification dispatcher drained")

	log.Info("Server stopped gracefully")
}
