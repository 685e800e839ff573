package web

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noterelay/noterelay/internal/blinko"
	"github.com/noterelay/noterelay/internal/pipeline"
)

// inboundMessage is the normalized message posted by the chat transport.
type inboundMessage struct {
	UserID      int64    `json:"userId"`
	DisplayName string   `json:"displayName"`
	Text        string   `json:"text"`
	PhotoURL    string   `json:"photoUrl"`
	PhotoURLs   []string `json:"photoUrls"`
	Command     string   `json:"command"`
	Args        string   `json:"args"`
}

// webhookReply is relayed back to the chat user by the transport.
type webhookReply struct {
	Text string `json:"text"`
}

func (s *Service) handleWebhook(c *fiber.Ctx) error {
	if secret := s.cfg.Webserver.WebhookSecret; secret != "" {
		got := c.Get("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
	}

	var msg inboundMessage
	if err := c.BodyParser(&msg); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed message payload")
	}

	if msg.UserID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "missing userId")
	}

	if msg.Command != "" {
		return c.JSON(webhookReply{Text: s.handleCommand(c, msg)})
	}

	return c.JSON(webhookReply{Text: s.handleForward(c, msg)})
}

func (s *Service) handleForward(c *fiber.Ctx, msg inboundMessage) string {
	attachments := msg.PhotoURLs
	if msg.PhotoURL != "" {
		attachments = append(attachments, msg.PhotoURL)
	}

	if msg.Text == "" && len(attachments) == 0 {
		return "Nothing to forward."
	}

	result := s.pipeline.Forward(c.Context(), pipeline.Message{
		UserID:      msg.UserID,
		Text:        msg.Text,
		Attachments: attachments,
	})

	if result.Outcome == pipeline.OutcomeCompleted {
		return fmt.Sprintf("Saved note %d.", result.NoteID)
	}

	return failureText(result.Err)
}

// failureText renders a terminal pipeline error for the chat user.
func failureText(err error) string {
	if errors.Is(err, blinko.ErrNotConfigured) {
		return "Blinko is not configured. Set blinko_url and blinko_token with /set first."
	}

	var apiErr *blinko.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case blinko.KindAuth:
			return "Blinko rejected the token. Check blinko_token."
		case blinko.KindNotFound:
			return "Blinko endpoint not found. Check blinko_url."
		case blinko.KindRateLimit, blinko.KindServer, blinko.KindNetwork:
			return "Blinko is unreachable right now, the message was not saved. Please retry."
		case blinko.KindClient:
			return "Blinko refused the request: " + apiErr.Message
		}
	}

	return "Forwarding failed: " + strings.TrimSpace(err.Error())
}
