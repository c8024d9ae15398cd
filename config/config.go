package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"lambolotto/database"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Chain configuration
	RPCURL               string // JSON-RPC endpoint of the Base node
	ChainID              int64
	PaymentRouterAddress string // Contract that receives ticket payments
	TokenAddress         string // ERC-20 token contract used for payouts
	TreasuryPrivateKey   string // Hex key of the payout treasury wallet

	// Lottery configuration
	TicketPrice       int64 // Whole tokens per ticket
	BaseJackpot       int64 // Opening jackpot after a win
	DailyGrantSize    int   // Free tickets per code redemption
	CodeRedemptionCap int   // Default per-code distinct-player cap
	VerifyTimeout     time.Duration

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated)

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Chain
		RPCURL:               getEnvWithDefault("RPC_URL", "https://mainnet.base.org"),
		ChainID:              8453, // Base mainnet
		PaymentRouterAddress: os.Getenv("PAYMENT_ROUTER_ADDRESS"),
		TokenAddress:         os.Getenv("TOKEN_ADDRESS"),
		TreasuryPrivateKey:   os.Getenv("TREASURY_PRIVATE_KEY"),

		// Lottery settings with defaults
		TicketPrice:       100_000,
		BaseJackpot:       1_000_000,
		DailyGrantSize:    3,
		CodeRedemptionCap: 3,
		VerifyTimeout:     30 * time.Second,

		// NATS
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if chainID := os.Getenv("CHAIN_ID"); chainID != "" {
		if parsed, err := strconv.ParseInt(chainID, 10, 64); err == nil {
			config.ChainID = parsed
		}
	}
	if price := os.Getenv("TICKET_PRICE"); price != "" {
		if parsed, err := strconv.ParseInt(price, 10, 64); err == nil {
			config.TicketPrice = parsed
		}
	}
	if jackpot := os.Getenv("BASE_JACKPOT"); jackpot != "" {
		if parsed, err := strconv.ParseInt(jackpot, 10, 64); err == nil {
			config.BaseJackpot = parsed
		}
	}
	if grant := os.Getenv("DAILY_GRANT_SIZE"); grant != "" {
		if parsed, err := strconv.Atoi(grant); err == nil {
			config.DailyGrantSize = parsed
		}
	}
	if redemptionCap := os.Getenv("CODE_REDEMPTION_CAP"); redemptionCap != "" {
		if parsed, err := strconv.Atoi(redemptionCap); err == nil {
			config.CodeRedemptionCap = parsed
		}
	}
	if timeout := os.Getenv("VERIFY_TIMEOUT_SECONDS"); timeout != "" {
		if parsed, err := strconv.Atoi(timeout); err == nil {
			config.VerifyTimeout = time.Duration(parsed) * time.Second
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.PaymentRouterAddress == "" {
			return nil, fmt.Errorf("PAYMENT_ROUTER_ADDRESS is required")
		}
		if config.TokenAddress == "" {
			return nil, fmt.Errorf("TOKEN_ADDRESS is required")
		}
		if config.TreasuryPrivateKey == "" {
			return nil, fmt.Errorf("TREASURY_PRIVATE_KEY is required")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:       "test",
		TicketPrice:       100_000,
		BaseJackpot:       1_000_000,
		DailyGrantSize:    3,
		CodeRedemptionCap: 3,
		VerifyTimeout:     time.Second,
	}
}
