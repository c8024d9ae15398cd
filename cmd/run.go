package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"lambolotto/application"
	"lambolotto/config"
	"lambolotto/database"
	"lambolotto/domain/events"
	"lambolotto/domain/services"
	"lambolotto/infrastructure"
	"lambolotto/repository"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting lambolotto...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Run pending migrations on startup
	log.Println("Running database migrations...")
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize NATS event publishing
	log.Println("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if err := eventPublisher.EnsureDomainEventStream(); err != nil {
		return fmt.Errorf("failed to ensure event stream: %w", err)
	}
	eventPublisher.RegisterLocalHandler(events.EventTypeRoundCompleted, func(_ context.Context, e events.Event) error {
		if completed, ok := e.(events.RoundCompletedEvent); ok {
			log.Printf("Round %d settled: %d tickets, next jackpot %d", completed.Sequence, completed.TicketsSold, completed.NextJackpot)
		}
		return nil
	})
	log.Println("NATS event publishing initialized successfully")

	// Initialize unit of work factory. Each transaction buffers its
	// events and flushes them only after commit.
	uowFactory := repository.NewUnitOfWorkFactory(db, func() application.TransactionalEventPublisher {
		return infrastructure.NewNATSTransactionalPublisher(eventPublisher)
	})

	// Initialize chain clients
	log.Println("Initializing chain clients...")
	chainClient, err := infrastructure.NewEthChainClient(cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to initialize chain client: %w", err)
	}
	verifier := services.NewPaymentVerifier(chainClient, cfg.PaymentRouterAddress, cfg.VerifyTimeout)

	payoutClient, err := infrastructure.NewEthPayoutClient(cfg.RPCURL, cfg.TokenAddress, cfg.TreasuryPrivateKey, cfg.ChainID)
	if err != nil {
		return fmt.Errorf("failed to initialize payout client: %w", err)
	}
	log.Println("Chain clients initialized successfully")

	// Initialize the application facade
	lottery := application.NewLottery(
		uowFactory,
		verifier,
		payoutClient,
		services.NewCryptoRandomSource(),
		application.LotteryConfig{
			TicketPrice:    cfg.TicketPrice,
			BaseJackpot:    cfg.BaseJackpot,
			DailyGrantSize: cfg.DailyGrantSize,
		},
	)

	// Make sure a round is open before the worker starts waiting on one
	round, err := lottery.GetCurrentRound(ctx)
	if err != nil {
		return fmt.Errorf("failed to open initial round: %w", err)
	}
	log.Printf("Round %d is open until %s", round.Sequence, round.EndTime.Format(time.RFC3339))

	// Start the draw worker
	worker := application.NewDrawWorker(lottery)
	stopWorker := worker.Start(ctx)
	log.Println("Draw worker started successfully")

	// Wait for context cancellation
	log.Printf("Lottery is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down...")
	stopWorker()

	if err := natsClient.Close(); err != nil {
		log.Printf("Error closing NATS connection: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
