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

	createBookingHandler "github.com/m04kA/SMC-TutorBooking/internal/api/handlers/create_booking"
	createOfferingHandler "github.com/m04kA/SMC-TutorBooking/internal/api/handlers/create_offering"
	getAvailableSlotsHandler "github.com/m04kA/SMC-TutorBooking/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-TutorBooking/internal/api/handlers/get_booking"
	getOfferingHandler "github.com/m04kA/SMC-TutorBooking/internal/api/handlers/get_offering"
	getStudentBookingsHandler "github.com/m04kA/SMC-TutorBooking/internal/api/handlers/get_student_bookings"
	getTutorBookingsHandler "github.com/m04kA/SMC-TutorBooking/internal/api/handlers/get_tutor_bookings"
	getTutorOfferingsHandler "github.com/m04kA/SMC-TutorBooking/internal/api/handlers/get_tutor_offerings"
	manageWindowHandler "github.com/m04kA/SMC-TutorBooking/internal/api/handlers/manage_window"
	replaceAvailabilityHandler "github.com/m04kA/SMC-TutorBooking/internal/api/handlers/replace_availability"
	updateBookingStatusHandler "github.com/m04kA/SMC-TutorBooking/internal/api/handlers/update_booking_status"
	updateOfferingRatesHandler "github.com/m04kA/SMC-TutorBooking/internal/api/handlers/update_offering_rates"
	"github.com/m04kA/SMC-TutorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-TutorBooking/internal/config"
	"github.com/m04kA/SMC-TutorBooking/internal/domain"
	offeringCache "github.com/m04kA/SMC-TutorBooking/internal/infra/cache/offering"
	"github.com/m04kA/SMC-TutorBooking/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-TutorBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-TutorBooking/internal/infra/storage/memory"
	offeringRepo "github.com/m04kA/SMC-TutorBooking/internal/infra/storage/offering"
	userServiceClient "github.com/m04kA/SMC-TutorBooking/internal/integrations/userservice"
	bookingsService "github.com/m04kA/SMC-TutorBooking/internal/service/bookings"
	offeringsService "github.com/m04kA/SMC-TutorBooking/internal/service/offerings"
	createBookingUC "github.com/m04kA/SMC-TutorBooking/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-TutorBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-TutorBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-TutorBooking/pkg/logger"
	"github.com/m04kA/SMC-TutorBooking/pkg/metrics"
	"github.com/m04kA/SMC-TutorBooking/pkg/txmanager"
)

// bookingStorage общий набор методов postgres и memory репозиториев бронирований
type bookingStorage interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetActiveBySlot(ctx context.Context, slot domain.SlotKey) ([]*domain.Booking, error)
	GetActiveByTutorDay(ctx context.Context, tutorID int64, day domain.WeekDay) ([]*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error
	Cancel(ctx context.Context, id int64, from domain.BookingStatus, by domain.PartyRole, reason *string, at time.Time) error
}

// txManager интерфейс менеджера транзакций для сервисов и use cases
type txManager interface {
	Do(ctx context.Context, fn func(txCtx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(txCtx context.Context) error) error
}

type storage struct {
	bookings  bookingStorage
	offerings offeringCache.Source
	txManager txManager
	close     func()
}

func main() {
	// Загружаем конфигурацию
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.NewWithOptions(logger.Options{
		File:   cfg.Logs.File,
		Level:  cfg.Logs.Level,
		Format: cfg.Logs.Format,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-TutorBooking...")
	log.Info("Configuration loaded from %s", configPath)

	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Invalid booking timezone %q: %v", cfg.Booking.Timezone, err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	stopMetricsCh := make(chan struct{})

	// Инициализируем хранилище
	store, err := openStorage(cfg, metricsCollector, stopMetricsCh, log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	// Кэш предложений в Redis (если настроен)
	offerings := store.offerings
	if cfg.Redis.Enabled() {
		redisClient, err := offeringCache.NewRedisClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()

		offerings = offeringCache.NewRepository(
			store.offerings,
			offeringCache.NewRedisStore(redisClient),
			time.Duration(cfg.Redis.TTL)*time.Second,
			log,
		)
		log.Info("Offering cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
	}

	// Публикация событий в Kafka (если настроена)
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(
			cfg.Kafka.Brokers,
			cfg.Kafka.Topic,
			time.Duration(cfg.Kafka.WriteTimeout)*time.Second,
		)
		log.Info("Kafka publisher enabled (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	// Интеграция с UserService, без URL роль тьютора не проверяется
	var userClient offeringsService.UserServiceClient
	if cfg.UserService.URL != "" {
		userClient = userServiceClient.NewClient(
			cfg.UserService.URL,
			time.Duration(cfg.UserService.Timeout)*time.Second,
			log,
		)
		log.Info("UserService client initialized (url=%s, timeout=%ds)", cfg.UserService.URL, cfg.UserService.Timeout)
	} else {
		log.Warn("UserService URL is empty, tutor role check disabled")
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		store.bookings,
		store.txManager,
		publisher,
		metricsCollector,
		location,
		log,
	)
	offeringSvc := offeringsService.NewService(
		offerings,
		store.txManager,
		userClient,
		metricsCollector,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		store.bookings,
		offerings,
		store.txManager,
		publisher,
		metricsCollector,
		location,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		store.bookings,
		offerings,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getStudentBookings := getStudentBookingsHandler.NewHandler(bookingSvc, log)
	getTutorBookings := getTutorBookingsHandler.NewHandler(bookingSvc, log)
	getOffering := getOfferingHandler.NewHandler(offeringSvc, log)
	getTutorOfferings := getTutorOfferingsHandler.NewHandler(offeringSvc, log)
	createOffering := createOfferingHandler.NewHandler(offeringSvc, log)
	updateOfferingRates := updateOfferingRatesHandler.NewHandler(offeringSvc, log)
	replaceAvailability := replaceAvailabilityHandler.NewHandler(offeringSvc, log)
	manageWindow := manageWindowHandler.NewHandler(offeringSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))

	// Metrics middleware и endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, metricsCollector.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Предложение тьютора и его расписание
	api.HandleFunc("/offerings/{offeringId}", getOffering.Handle).Methods(http.MethodGet)

	// Предложения тьютора
	api.HandleFunc("/tutors/{userId}/offerings", getTutorOfferings.Handle).Methods(http.MethodGet)

	// Подходящие окна для дня, длительности и способа обучения
	api.HandleFunc("/offerings/{offeringId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Смена статуса: подтверждение, отмена, завершение
	protected.HandleFunc("/bookings/{bookingId}", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// История бронирований ученика
	protected.HandleFunc("/students/{userId}/bookings", getStudentBookings.Handle).Methods(http.MethodGet)

	// Бронирования тьютора
	protected.HandleFunc("/tutors/{userId}/bookings", getTutorBookings.Handle).Methods(http.MethodGet)

	// --- Предложения и расписание (для тьюторов) ---
	protected.HandleFunc("/offerings", createOffering.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/offerings/{offeringId}/rates", updateOfferingRates.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/offerings/{offeringId}/availability", replaceAvailability.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/offerings/{offeringId}/availability/{day}/windows", manageWindow.Add).Methods(http.MethodPost)
	protected.HandleFunc("/offerings/{offeringId}/availability/{day}/windows/{index}", manageWindow.Update).Methods(http.MethodPatch)
	protected.HandleFunc("/offerings/{offeringId}/availability/{day}/windows/{index}", manageWindow.Remove).Methods(http.MethodDelete)

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
		log.Info("Starting server on %s (storage=%s, timezone=%s)", addr, cfg.Storage.Driver, location)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	if err := publisher.Close(); err != nil {
		log.Error("Failed to close event publisher: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// openStorage создает репозитории и менеджер транзакций для выбранного драйвера
func openStorage(cfg *config.Config, collector *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &storage{
			bookings:  memory.NewBookingRepository(store),
			offerings: memory.NewOfferingRepository(store),
			txManager: memory.NewTxManager(store),
			close:     func() {},
		}, nil
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Без метрик обертка работает с nil collector
	var dbCollector dbmetrics.Collector
	if collector != nil {
		dbCollector = collector
	}
	wrappedDB := dbmetrics.WrapWithDefault(db, dbCollector, cfg.Database.DBName, stopCh)

	return &storage{
		bookings:  bookingRepo.NewRepository(wrappedDB),
		offerings: offeringRepo.NewRepository(wrappedDB),
		txManager: txmanager.New(wrappedDB, log),
		close:     func() { wrappedDB.Unwrap().Close() },
	}, nil
}
