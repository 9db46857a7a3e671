package rabbit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// managementClient is a minimal client for the RabbitMQ management HTTP API.
// Paths are built against one vhost; credentials ride on every request as
// basic auth.
type managementClient struct {
	base     string
	username string
	password string
	vhost    string
	http     *http.Client
}

func newManagementClient(rawURL, vhost string) (*managementClient, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid management URL: %w", err)
	}
	username := "guest"
	password := "guest"
	if u.User != nil {
		username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			password = p
		}
	}
	base := &url.URL{Scheme: u.Scheme, Host: u.Host}
	return &managementClient{
		base:     base.String(),
		username: username,
		password: password,
		vhost:    vhost,
		http:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type httpError struct {
	Status int
	Body   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("management API returned %d: %s", e.Status, e.Body)
}

func isNotFound(err error) bool {
	he, ok := err.(*httpError)
	return ok && he.Status == http.StatusNotFound
}

// do issues one request against the management API. body and out may be nil;
// 404 surfaces as an *httpError the callers can test with isNotFound.
func (m *managementClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, m.base+path, reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(m.username, m.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("management API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &httpError{Status: resp.StatusCode, Body: string(raw)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (m *managementClient) vhostSegment() string {
	return url.PathEscape(m.vhost)
}

/* Wire shapes, trimmed to the fields the gateway reads */

type mgmtQueue struct {
	Name      string         `json:"name"`
	Messages  int64          `json:"messages"`
	Durable   bool           `json:"durable"`
	Arguments map[string]any `json:"arguments"`
}

type mgmtExchange struct {
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Arguments map[string]any `json:"arguments"`
}

type mgmtBinding struct {
	Source          string         `json:"source"`
	Destination     string         `json:"destination"`
	DestinationType string         `json:"destination_type"`
	RoutingKey      string         `json:"routing_key"`
	PropertiesKey   string         `json:"properties_key"`
	Arguments       map[string]any `json:"arguments"`
}

func (m *managementClient) listQueues(ctx context.Context) ([]mgmtQueue, error) {
	var out []mgmtQueue
	err := m.do(ctx, http.MethodGet, "/api/queues/"+m.vhostSegment(), nil, &out)
	return out, err
}

func (m *managementClient) getQueue(ctx context.Context, name string) (mgmtQueue, error) {
	var out mgmtQueue
	err := m.do(ctx, http.MethodGet, "/api/queues/"+m.vhostSegment()+"/"+url.PathEscape(name), nil, &out)
	return out, err
}

func (m *managementClient) putQueue(ctx context.Context, name string, arguments map[string]any) error {
	body := map[string]any{"durable": true, "arguments": arguments}
	return m.do(ctx, http.MethodPut, "/api/queues/"+m.vhostSegment()+"/"+url.PathEscape(name), body, nil)
}

func (m *managementClient) deleteQueue(ctx context.Context, name string) error {
	return m.do(ctx, http.MethodDelete, "/api/queues/"+m.vhostSegment()+"/"+url.PathEscape(name), nil, nil)
}

func (m *managementClient) listExchanges(ctx context.Context) ([]mgmtExchange, error) {
	var out []mgmtExchange
	err := m.do(ctx, http.MethodGet, "/api/exchanges/"+m.vhostSegment(), nil, &out)
	return out, err
}

func (m *managementClient) getExchange(ctx context.Context, name string) (mgmtExchange, error) {
	var out mgmtExchange
	err := m.do(ctx, http.MethodGet, "/api/exchanges/"+m.vhostSegment()+"/"+url.PathEscape(name), nil, &out)
	return out, err
}

func (m *managementClient) putExchange(ctx context.Context, name string, arguments map[string]any) error {
	body := map[string]any{"type": "topic", "durable": true, "arguments": arguments}
	return m.do(ctx, http.MethodPut, "/api/exchanges/"+m.vhostSegment()+"/"+url.PathEscape(name), body, nil)
}

func (m *managementClient) deleteExchange(ctx context.Context, name string) error {
	return m.do(ctx, http.MethodDelete, "/api/exchanges/"+m.vhostSegment()+"/"+url.PathEscape(name), nil, nil)
}

func (m *managementClient) listBindings(ctx context.Context, exchange string) ([]mgmtBinding, error) {
	var out []mgmtBinding
	path := "/api/exchanges/" + m.vhostSegment() + "/" + url.PathEscape(exchange) + "/bindings/source"
	err := m.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (m *managementClient) bindQueue(ctx context.Context, exchange, queue, routingKey string, arguments map[string]any) error {
	body := map[string]any{"routing_key": routingKey, "arguments": arguments}
	path := "/api/bindings/" + m.vhostSegment() + "/e/" + url.PathEscape(exchange) + "/q/" + url.PathEscape(queue)
	return m.do(ctx, http.MethodPost, path, body, nil)
}

func (m *managementClient) unbindQueue(ctx context.Context, exchange, queue, propertiesKey string) error {
	path := "/api/bindings/" + m.vhostSegment() + "/e/" + url.PathEscape(exchange) +
		"/q/" + url.PathEscape(queue) + "/" + url.PathEscape(propertiesKey)
	return m.do(ctx, http.MethodDelete, path, nil, nil)
}
