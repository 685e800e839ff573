package config

import (
	"github.com/noterelay/noterelay/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Blinko    Blinko
}

// Webserver implement webserver settings.
type Webserver struct {
	Port          int    // listening port for the webserver
	ShutDownTime  int    // wait time for shutdown
	URL           string // base url for the webserver
	WebhookSecret string // shared secret expected in X-Webhook-Secret, empty disables the check
}

// Blinko holds remote client tuning.
// The per-user base URL and token live in the user's settings,
// only cross-user policy is configured here.
type Blinko struct {
	TimeoutSeconds int // per request timeout
	MaxAttempts    int // retry budget for retryable failures
}
