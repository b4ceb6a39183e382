package httpclient

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// LogrusAdapter пересылает сообщения resty в logrus.
type LogrusAdapter struct {
	entry *logrus.Entry
}

func NewLogrusAdapter(entry *logrus.Entry) resty.Logger {
	return &LogrusAdapter{entry: entry}
}

func (a *LogrusAdapter) Errorf(format string, v ...interface{}) {
	a.entry.Error(fmt.Sprintf(format, v...))
}

func (a *LogrusAdapter) Warnf(format string, v ...interface{}) {
	a.entry.Warn(fmt.Sprintf(format, v...))
}

func (a *LogrusAdapter) Debugf(format string, v ...interface{}) {
	a.entry.Debug(fmt.Sprintf(format, v...))
}

// Options: настройки исходящего HTTP клиента.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// RetryCount: повторы на транспортном уровне (сетевые ошибки и 5xx).
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

// New создаёт resty клиента с логированием через logrus.
func New(entry *logrus.Entry, opts Options) *resty.Client {
	client := resty.New().
		SetLogger(NewLogrusAdapter(entry)).
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount)

	if opts.RetryWait > 0 {
		client.SetRetryWaitTime(opts.RetryWait)
	}
	if opts.RetryMaxWait > 0 {
		client.SetRetryMaxWaitTime(opts.RetryMaxWait)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.RetryCount > 0 {
		client.AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= 500
		})
	}
	return client
}
