// Package client содержит HTTP-клиент удаленного сервиса объявлений.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/RoGogDBD/salesitems/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	itemsPath       = "SalesItems"
	instrumentation = "github.com/RoGogDBD/salesitems/internal/client"
)

// TokenSource выдает токен для заголовка Authorization.
// Пустой токен без ошибки означает анонимный запрос.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client обращается к REST API объявлений: GET/POST /SalesItems, GET/DELETE /SalesItems/{id}.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	tokens      TokenSource
	logRequests bool
	timeout     *time.Duration

	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент (используется в тестах).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout задает общий таймаут запроса; 0 означает отсутствие таймаута.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = &d
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(cl *Client) {
		cl.tokens = ts
	}
}

// WithRequestLogging включает построчное логирование запросов.
func WithRequestLogging(enabled bool) Option {
	return func(cl *Client) {
		cl.logRequests = enabled
	}
}

// New создает клиент для базового адреса вида https://host/api/.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout != nil {
		// Копия, чтобы не менять клиент, переданный через WithHTTPClient.
		hc := *c.httpClient
		hc.Timeout = *c.timeout
		c.httpClient = &hc
	}
	c.initMetrics()
	return c
}

func (c *Client) initMetrics() {
	meter := otel.Meter(instrumentation)
	requests, err := meter.Int64Counter("salesitems.client.requests",
		metric.WithDescription("Requests sent to the sales items service"))
	if err != nil {
		requests = noop.Int64Counter{}
	}
	duration, err := meter.Float64Histogram("salesitems.client.duration",
		metric.WithDescription("Sales items service round trip time"),
		metric.WithUnit("s"))
	if err != nil {
		duration = noop.Float64Histogram{}
	}
	c.requests = requests
	c.duration = duration
}

// List возвращает все объявления.
func (c *Client) List(ctx context.Context) ([]models.Item, error) {
	status, body, err := c.do(ctx, "list", http.MethodGet, itemsPath, nil)
	if err != nil {
		return nil, err
	}
	if isEmpty(body) {
		return nil, &EmptyBodyError{Status: status}
	}

	var items []models.Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode sales items: %w", err)
	}
	return items, nil
}

// Get возвращает объявление по id.
func (c *Client) Get(ctx context.Context, id int) (models.Item, error) {
	status, body, err := c.do(ctx, "get", http.MethodGet, itemPath(id), nil)
	if err != nil {
		return models.Item{}, err
	}
	if isEmpty(body) {
		return models.Item{}, &EmptyBodyError{Status: status}
	}

	var item models.Item
	if err := json.Unmarshal(body, &item); err != nil {
		return models.Item{}, fmt.Errorf("decode sales item %d: %w", id, err)
	}
	return item, nil
}

// Create отправляет черновик и возвращает объявление с назначенным сервисом id.
// Если сервис ответил без тела, возвращается исходный черновик.
func (c *Client) Create(ctx context.Context, draft models.Item) (models.Item, error) {
	_, body, err := c.do(ctx, "create", http.MethodPost, itemsPath, draft)
	if err != nil {
		return models.Item{}, err
	}
	if isEmpty(body) {
		return draft, nil
	}

	var created models.Item
	if err := json.Unmarshal(body, &created); err != nil {
		return models.Item{}, fmt.Errorf("decode created sales item: %w", err)
	}
	return created, nil
}

// Delete удаляет объявление по id. Тело ответа (удаленный объект или пусто) игнорируется.
func (c *Client) Delete(ctx context.Context, id int) error {
	_, _, err := c.do(ctx, "delete", http.MethodDelete, itemPath(id), nil)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any) (int, []byte, error) {
	start := time.Now()
	status, body, err := c.roundTrip(ctx, method, path, payload)

	outcome := "success"
	switch err.(type) {
	case nil:
	case *HTTPError:
		outcome = "http_error"
	default:
		outcome = "transport_error"
	}
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	)
	c.requests.Add(ctx, 1, attrs)
	c.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	if c.logRequests {
		log.Printf("[client] %s %s/%s -> %d (%s) %v", method, c.baseURL, path, status, outcome, time.Since(start))
	}
	return status, body, err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return 0, nil, fmt.Errorf("get auth token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			log.Printf("[client] failed to close response body: %v", closeErr)
		}
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, &TransportError{Op: "read " + path, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return res.StatusCode, body, &HTTPError{Status: res.StatusCode, Reason: reasonPhrase(res)}
	}
	return res.StatusCode, body, nil
}

func itemPath(id int) string {
	return itemsPath + "/" + strconv.Itoa(id)
}

func isEmpty(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// reasonPhrase извлекает текст статуса ("Internal Server Error") из строки статуса ответа.
func reasonPhrase(res *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)))
	if reason == "" {
		reason = http.StatusText(res.StatusCode)
	}
	return reason
}
