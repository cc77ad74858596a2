package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// Risk scoring knobs. Scores below LowThreshold read low, scores above
	// HighThreshold read high.
	RiskBaseScore     int
	RiskLowThreshold  int
	RiskHighThreshold int

	// Race monitor: flag a record with >= MonitorThreshold mutations inside
	// the trailing window.
	MonitorWindowMins int
	MonitorThreshold  int64
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	return &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "motofin"),
		MySQLUser: getenv("MYSQL_USER", "motofin"),
		MySQLPass: getenv("MYSQL_PASS", "motofin"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		RiskBaseScore:     getint("RISK_BASE_SCORE", 30),
		RiskLowThreshold:  getint("RISK_LOW_THRESHOLD", 40),
		RiskHighThreshold: getint("RISK_HIGH_THRESHOLD", 70),

		MonitorWindowMins: getint("MONITOR_WINDOW_MINUTES", 10),
		MonitorThreshold:  int64(getint("MONITOR_THRESHOLD", 10)),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.RiskLowThreshold >= c.RiskHighThreshold {
		return fmt.Errorf("RISK_LOW_THRESHOLD (%d) must be below RISK_HIGH_THRESHOLD (%d)",
			c.RiskLowThreshold, c.RiskHighThreshold)
	}
	if c.MonitorWindowMins <= 0 || c.MonitorThreshold <= 0 {
		return errors.New("monitor window and threshold must be positive")
	}
	return nil
}

func (c *Config) MonitorWindow() time.Duration {
	return time.Duration(c.MonitorWindowMins) * time.Minute
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
