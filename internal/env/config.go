package env

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Host string `env:"COSMOGRAM_HOST,default=localhost"`
	Port int    `env:"COSMOGRAM_PORT,default=5190"`

	APIURL string `env:"COSMOGRAM_API_URL,default=http://localhost:2222/api"`

	DialTimeout time.Duration `env:"COSMOGRAM_DIAL_TIMEOUT,default=5s"`
	IOTimeout   time.Duration `env:"COSMOGRAM_IO_TIMEOUT,default=5s"`

	LogLevel string `env:"COSMOGRAM_LOG_LEVEL,default=warn"`

	// LogFile switches logging from stderr to a rotated file
	LogFile       string `env:"COSMOGRAM_LOG_FILE"`
	LogMaxSizeMB  int    `env:"COSMOGRAM_LOG_MAX_SIZE_MB,default=10"`
	LogMaxBackups int    `env:"COSMOGRAM_LOG_MAX_BACKUPS,default=3"`
	LogMaxAgeDays int    `env:"COSMOGRAM_LOG_MAX_AGE_DAYS,default=28"`
}

// LoadConfig reads the configuration from the environment, after loading any
// variables defined in .env.local.
func LoadConfig(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("Failed to load .env.local: %w", err)
		}
	}

	return LoadConfigWith(ctx, envconfig.OsLookuper())
}

// LoadConfigWith reads the configuration from the provided Lookuper.
func LoadConfigWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	config := Config{}

	if err := envconfig.ProcessWith(ctx, &config, lookuper); err != nil {
		return nil, err
	}

	return &config, nil
}
