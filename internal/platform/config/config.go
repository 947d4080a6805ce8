package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string
	AdminToken  string

	RPCURL             string
	ContractAddress    string
	FundingPrivateKey  string
	ChainID            int64
	GasPriceMultiplier float64
	FundingStakeWei    *big.Int
	FinalityTimeout    time.Duration

	ReconcileInterval time.Duration
	ReconcileMinAge   time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged first when present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "ballotchain"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	chainID, err := envInt64("CHAIN_ID", 11155111)
	if err != nil {
		return Config{}, err
	}
	multiplier, err := envFloat("GAS_PRICE_MULTIPLIER", 1.5)
	if err != nil {
		return Config{}, err
	}
	stake, err := envBigInt("FUNDING_STAKE_WEI")
	if err != nil {
		return Config{}, err
	}
	finalityTimeout, err := envDuration("FINALITY_TIMEOUT", 300*time.Second)
	if err != nil {
		return Config{}, err
	}
	reconcileInterval, err := envDuration("RECONCILE_INTERVAL", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}
	reconcileMinAge, err := envDuration("RECONCILE_MIN_AGE", 15*time.Minute)
	if err != nil {
		return Config{}, err
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		AdminToken:  os.Getenv("ADMIN_TOKEN"),

		RPCURL:             os.Getenv("RPC_URL"),
		ContractAddress:    os.Getenv("CONTRACT_ADDRESS"),
		FundingPrivateKey:  strings.TrimPrefix(os.Getenv("FUNDING_PRIVATE_KEY"), "0x"),
		ChainID:            chainID,
		GasPriceMultiplier: multiplier,
		FundingStakeWei:    stake,
		FinalityTimeout:    finalityTimeout,

		ReconcileInterval: reconcileInterval,
		ReconcileMinAge:   reconcileMinAge,
	}, nil
}

func envInt64(name string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func envFloat(name string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func envBigInt(name string) (*big.Int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil, nil
	}
	value, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("parse %s: not a base-10 integer", name)
	}
	return value, nil
}
