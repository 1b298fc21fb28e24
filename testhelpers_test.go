//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/indie-cactus/service-reservation/internal/adapter"
	"github.com/indie-cactus/service-reservation/internal/application"
	"github.com/indie-cactus/service-reservation/internal/config"
	"github.com/indie-cactus/service-reservation/internal/domain/cart"
	"github.com/indie-cactus/service-reservation/internal/events"
	"github.com/indie-cactus/service-reservation/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// reservationStack holds the wired-up service components under test.
type reservationStack struct {
	Inventory    *application.InventoryService
	Pricing      *application.PricingService
	Carts        *application.CartService
	Bookings     *application.BookingService
	Confirmation *application.ConfirmationService
	BookingRepo  *repository.GormBookingRepository
	Cleanup      func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a
// connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_reservation",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_reservation sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.RoomModel{},
		&repository.RateModel{},
		&repository.BookingModel{},
		&repository.BookingLineModel{},
		&repository.CouponModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicBookingEvents, events.TopicOpsAlerts)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupReservationStack wires the full service stack against real Postgres
// and Kafka, with the mock payment processor and an in-memory cart store.
func setupReservationStack(t *testing.T, db *gorm.DB, brokers []string) *reservationStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	inventoryRepo := repository.NewGormInventoryRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	couponRepo := repository.NewGormCouponRepository(db)
	cartStore := repository.NewMemoryCartStore()

	producer := events.NewProducer(brokers, logger)
	processor := adapter.NewMockProcessor(logger)

	processorCfg := config.ProcessorConfig{
		MaxRetries: 2,
		SuccessURL: "https://example.test/payments/success",
		FailureURL: "https://example.test/payments/failure",
		PendingURL: "https://example.test/payments/pending",
	}

	pricing := application.NewPricingService(inventoryRepo, logger)
	return &reservationStack{
		Inventory:    application.NewInventoryService(inventoryRepo, logger),
		Pricing:      pricing,
		Carts:        application.NewCartService(cartStore, inventoryRepo, pricing, couponRepo, cart.Unlimited, logger),
		Bookings:     application.NewBookingService(bookingRepo, inventoryRepo, cartStore, couponRepo, processor, producer, processorCfg, logger),
		Confirmation: application.NewConfirmationService(bookingRepo, processor, producer, logger),
		BookingRepo:  bookingRepo,
		Cleanup:      func() { _ = producer.Close() },
	}
}

// seedRoomWithRates creates a room and publishes a continuous ledger range.
func seedRoomWithRates(t *testing.T, stack *reservationStack, start, end string, rateCents int64, availability int) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	room, err := stack.Inventory.CreateRoom(ctx, application.CreateRoomRequest{
		PropertyID:        uuid.New(),
		Name:              "Integration Suite",
		Occupancy:         "exclusive",
		MaxGuests:         2,
		WeekdayPriceCents: rateCents,
		WeekendPriceCents: rateCents,
	})
	require.NoError(t, err)

	_, err = stack.Inventory.SeedRates(ctx, application.SeedRatesRequest{
		RoomID:       room.ID,
		Start:        mustDate(t, start),
		End:          mustDate(t, end),
		RateCents:    rateCents,
		Availability: availability,
	})
	require.NoError(t, err)
	return room.ID
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the
// expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) events.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := events.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// countEventsOfType drains a topic for a bounded window and counts matching
// events, for exactly-once assertions.
func countEventsOfType(t *testing.T, brokers []string, topic, eventType string, window time.Duration) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), window)
	defer cancel()

	groupID := fmt.Sprintf("test-count-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	count := 0
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return count
		}
		if ce, err := events.ParseCloudEvent(msg.Value); err == nil && ce.Type == eventType {
			count++
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with
// "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "failed to dial Kafka controller")
	defer controllerConn.Close()

	configs := make([]kafkago.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		configs = append(configs, kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}
	require.NoError(t, controllerConn.CreateTopics(configs...), "failed to create topics")
}
