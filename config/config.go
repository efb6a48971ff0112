package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every externally injected setting the server needs.
type Config struct {
	Port          string `env:"PORT" envDefault:"5000"`
	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DBName        string `env:"DB_NAME" envDefault:"herbtrade"`
	JWTSecret     string `env:"JWT_SECRET"`
	PostmarkToken string `env:"POSTMARK_API_TOKEN"`
	EmailSender   string `env:"EMAIL_SENDER"`
	FrontendURL   string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
}

var cfg *Config

// Load reads .env (if present) and parses the environment into Config.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		logrus.Info("no .env file found, using environment variables")
	}

	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	cfg = c
	return c, nil
}

// Get returns the loaded configuration.
func Get() *Config {
	return cfg
}

// Set replaces the loaded configuration. Tests use it to inject settings
// without touching the process environment.
func Set(c *Config) {
	cfg = c
}
