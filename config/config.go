// Package config reads the runtime settings from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/souvik131/optionlab/option"
	"github.com/souvik131/optionlab/pricing"
)

const (
	DefaultSurfacePoints = 50
	DefaultOutputDir     = "./data"
	DefaultNATSSubject   = "optionlab.surfaces"
)

type Config struct {
	// Base is the record the surface engine sweeps around.
	Base option.Params

	FDStep        float64
	SurfacePoints int
	Workers       int
	OutputDir     string

	// HTTPAddr enables the HTTP API when set, e.g. ":8080".
	HTTPAddr string
	// Schedule is a cron spec such as "@every 15m". Empty runs the surface engine once.
	Schedule string

	NATSURL     string
	NATSSubject string

	S3Bucket string
	S3Region string
	S3Prefix string

	// TelegramToken and TelegramChatID enable a run report in a Telegram chat.
	TelegramToken  string
	TelegramChatID int64
}

// Load reads the given .env files (".env" when none are given) into the
// process environment and then builds a Config from it. Missing files are
// not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from GREEKS_* variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Base:          option.DefaultParams(),
		FDStep:        pricing.DefaultStep,
		SurfacePoints: DefaultSurfacePoints,
		OutputDir:     DefaultOutputDir,
		NATSSubject:   DefaultNATSSubject,
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"GREEKS_ASSET_PRICE", &cfg.Base.AssetPrice},
		{"GREEKS_STRIKE_PRICE", &cfg.Base.StrikePrice},
		{"GREEKS_RATE", &cfg.Base.Rate},
		{"GREEKS_COST_OF_CARRY", &cfg.Base.CostOfCarry},
		{"GREEKS_VOLATILITY", &cfg.Base.Volatility},
		{"GREEKS_EXERCISE_TIME", &cfg.Base.ExerciseTime},
		{"GREEKS_FD_STEP", &cfg.FDStep},
	}
	for _, f := range floats {
		if err := lookupFloat(f.key, f.dst); err != nil {
			return nil, err
		}
	}

	if err := lookupInt("GREEKS_SURFACE_POINTS", &cfg.SurfacePoints); err != nil {
		return nil, err
	}
	if err := lookupInt("GREEKS_WORKERS", &cfg.Workers); err != nil {
		return nil, err
	}
	if v, ok := lookup("GREEKS_TELEGRAM_CHAT_ID"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("GREEKS_TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if v, ok := lookup("GREEKS_OPTION_TYPE"); ok {
		t, err := option.ParseOptionType(v)
		if err != nil {
			return nil, fmt.Errorf("GREEKS_OPTION_TYPE: %w", err)
		}
		cfg.Base.Type = t
	}

	lookupString("GREEKS_OUTPUT_DIR", &cfg.OutputDir)
	lookupString("GREEKS_HTTP_ADDR", &cfg.HTTPAddr)
	lookupString("GREEKS_SCHEDULE", &cfg.Schedule)
	lookupString("GREEKS_NATS_URL", &cfg.NATSURL)
	lookupString("GREEKS_NATS_SUBJECT", &cfg.NATSSubject)
	lookupString("GREEKS_S3_BUCKET", &cfg.S3Bucket)
	lookupString("GREEKS_S3_REGION", &cfg.S3Region)
	lookupString("GREEKS_S3_PREFIX", &cfg.S3Prefix)
	lookupString("GREEKS_TELEGRAM_TOKEN", &cfg.TelegramToken)

	if err := cfg.Base.Validate(); err != nil {
		return nil, fmt.Errorf("base params: %w", err)
	}
	if cfg.SurfacePoints <= 0 {
		return nil, fmt.Errorf("%w: GREEKS_SURFACE_POINTS must be positive, got %d", option.ErrInvalidArgument, cfg.SurfacePoints)
	}
	if (cfg.TelegramToken == "") != (cfg.TelegramChatID == 0) {
		return nil, fmt.Errorf("%w: GREEKS_TELEGRAM_TOKEN and GREEKS_TELEGRAM_CHAT_ID must be set together", option.ErrInvalidArgument)
	}
	return cfg, nil
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func lookupString(key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func lookupFloat(key string, dst *float64) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func lookupInt(key string, dst *int) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
