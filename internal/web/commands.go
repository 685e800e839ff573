package web

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/noterelay/noterelay/internal/blinko"
	"github.com/noterelay/noterelay/internal/settings"
)

func (s *Service) handleCommand(c *fiber.Ctx, msg inboundMessage) string {
	switch msg.Command {
	case "/start":
		return s.commandStart(msg)
	case "/settings":
		return s.commandSettings(msg)
	case "/set":
		return s.commandSet(msg)
	case "/config":
		return s.commandConfig(c, msg)
	}

	return "Unknown command: " + msg.Command
}

func (s *Service) commandStart(msg inboundMessage) string {
	if _, err := settings.EnsureUser(s.db, msg.UserID, msg.DisplayName); err != nil {
		log.Error().Err(err).Int64("user", msg.UserID).Msg("failed to create user")

		return "Something went wrong, please retry."
	}

	effective, err := settings.List(s.db, msg.UserID)
	if err != nil {
		return "Something went wrong, please retry."
	}

	if effective[settings.KeyBlinkoURL] == "" || effective[settings.KeyBlinkoToken] == "" {
		return "Welcome! Configure your Blinko instance first:\n" +
			"/set blinko_url <url>\n/set blinko_token <token>"
	}

	return "Welcome back! Send me a message and I will save it to Blinko."
}

func (s *Service) commandSettings(msg inboundMessage) string {
	effective, err := settings.List(s.db, msg.UserID)
	if err != nil {
		return "Something went wrong, please retry."
	}

	keys := make([]string, 0, len(effective))
	for key := range effective {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var b strings.Builder

	b.WriteString("Your settings:\n")

	for _, key := range keys {
		value := effective[key]
		if key == settings.KeyBlinkoToken {
			value = maskSecret(value)
		}

		if value == "" {
			value = "(not set)"
		}

		fmt.Fprintf(&b, "%s = %s\n", key, value)
	}

	return strings.TrimRight(b.String(), "\n")
}

func (s *Service) commandSet(msg inboundMessage) string {
	key, value, found := strings.Cut(strings.TrimSpace(msg.Args), " ")
	if !found || key == "" {
		return "Usage: /set <key> <value>"
	}

	if err := settings.Set(s.db, msg.UserID, key, value); err != nil {
		return "Could not save: " + err.Error()
	}

	return "Saved " + key + "."
}

// commandConfig shows a redacted snapshot of the remote side configuration.
func (s *Service) commandConfig(c *fiber.Ctx, msg inboundMessage) string {
	effective, err := settings.List(s.db, msg.UserID)
	if err != nil {
		return "Something went wrong, please retry."
	}

	client, err := blinko.New(
		effective[settings.KeyBlinkoURL],
		effective[settings.KeyBlinkoToken],
		blinko.WithMaxAttempts(s.cfg.Blinko.MaxAttempts),
		blinko.WithTimeout(time.Duration(s.cfg.Blinko.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		return failureText(err)
	}

	remoteCfg, err := client.ListConfig(c.Context())
	if err != nil {
		return failureText(err)
	}

	keys := make([]string, 0, len(remoteCfg))
	for key := range remoteCfg {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var b strings.Builder

	b.WriteString("Blinko configuration:\n")

	for _, key := range keys {
		value := fmt.Sprintf("%v", remoteCfg[key])
		if isSecretKey(key) {
			value = maskSecret(value)
		}

		fmt.Fprintf(&b, "%s = %s\n", key, value)
	}

	return strings.TrimRight(b.String(), "\n")
}

func isSecretKey(key string) bool {
	lower := strings.ToLower(key)

	return strings.Contains(lower, "token") ||
		strings.Contains(lower, "key") ||
		strings.Contains(lower, "secret") ||
		strings.Contains(lower, "password")
}

func maskSecret(value string) string {
	if value == "" {
		return ""
	}

	if len(value) <= 4 {
		return "****"
	}

	return value[:4] + strings.Repeat("*", len(value)-4)
}
