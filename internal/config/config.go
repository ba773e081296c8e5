package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppEnv  string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr    string
	RedisDB      int
	EventChannel string

	IdempTTLSecs int
	LockWaitSecs int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	// local dev convenience; absent .env is fine
	_ = godotenv.Load()

	return &Config{
		AppPort: getenv("APP_PORT", "8080"),
		AppEnv:  getenv("APP_ENV", "dev"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "loanfund"),
		MySQLUser: getenv("MYSQL_USER", "loanfund"),
		MySQLPass: getenv("MYSQL_PASS", "loanfund"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getenvInt("REDIS_DB", 0),
		EventChannel: getenv("EVENT_CHANNEL", "loanfund.events"),

		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),
		LockWaitSecs: getenvInt("LOCK_WAIT_SECONDS", 5),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.LockWaitSecs <= 0 {
		return errors.New("LOCK_WAIT_SECONDS must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME.
	// innodb_lock_wait_timeout bounds the member-row lock wait so duplicate
	// submissions fail fast with a retryable error instead of hanging.
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8&innodb_lock_wait_timeout=%d",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB, c.LockWaitSecs)
}
