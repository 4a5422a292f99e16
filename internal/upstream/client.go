// Package upstream вызывает внешний workflow прогнозирования спроса
package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// DefaultTimeout ограничение на один вызов workflow
	DefaultTimeout = 30 * time.Second
	// maxBodySize защищает от неограниченно больших ответов
	maxBodySize = 32 << 20
)

// Client вызывает webhook workflow. Повторов нет: ошибка сразу возвращается вызывающему.
type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

// NewClient создает клиента для заданного URL
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:     url,
		timeout: timeout,
		http:    &http.Client{},
	}
}

// URL адрес workflow
func (c *Client) URL() string {
	return c.url
}

// Trigger запускает workflow (POST с пустым JSON) и возвращает тело успешного ответа.
// Отмена ctx не прерывает вызов, его ограничивает только таймаут клиента.
func (c *Client) Trigger(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:    KindHTTP,
			Message: fmt.Sprintf("workflow responded with status %d", resp.StatusCode),
			Status:  resp.StatusCode,
			Body:    body,
		}
	}

	return body, nil
}

func (c *Client) classify(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{
			Kind:    KindTimeout,
			Message: fmt.Sprintf("workflow did not respond within %s", c.timeout),
			Err:     err,
		}
	}
	return &Error{Kind: KindTransport, Message: "workflow request failed", Err: err}
}
