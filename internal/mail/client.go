// Package mail отправляет транзакционные письма через HTTP API провайдера.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Studio-Zurich/fix-app-sub000/internal/httpclient"
	"github.com/Studio-Zurich/fix-app-sub000/internal/logger"
)

type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	CC      []string `json:"cc,omitempty"`
	BCC     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// Sender: любой способ доставки письма.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendError описывает отказ провайдера.
type SendError struct {
	StatusCode int
	Retryable  bool
	Message    string
	Cause      error
}

func (e *SendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("mail: отправка не удалась: %v", e.Cause)
	}
	return fmt.Sprintf("mail: провайдер вернул %d: %s", e.StatusCode, e.Message)
}

func (e *SendError) Unwrap() error {
	return e.Cause
}

// IsRetryable сообщает, имеет ли смысл повторить отправку.
// Ошибки, не описанные SendError, считаются временными.
func IsRetryable(err error) bool {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Retryable
	}
	return !errors.Is(err, context.Canceled)
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client: клиент Resend-совместимого API (POST /emails).
type Client struct {
	httpc *resty.Client
}

func New(cfg Config) *Client {
	httpc := httpclient.New(logger.Component("mail"), httpclient.Options{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Timeout: cfg.Timeout,
	})
	httpc.SetAuthToken(cfg.APIKey)
	return &Client{httpc: httpc}
}

type providerError struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

func (c *Client) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return &SendError{StatusCode: http.StatusUnprocessableEntity, Message: "нет получателей"}
	}

	var perr providerError
	resp, err := c.httpc.R().
		SetContext(ctx).
		SetBody(msg).
		SetError(&perr).
		Post("/emails")
	if err != nil {
		return &SendError{Retryable: !errors.Is(err, context.Canceled), Cause: err}
	}
	if resp.IsError() {
		status := resp.StatusCode()
		message := perr.Message
		if message == "" {
			message = strings.TrimSpace(resp.String())
		}
		return &SendError{
			StatusCode: status,
			Retryable:  status == http.StatusTooManyRequests || status >= 500,
			Message:    message,
		}
	}
	return nil
}
