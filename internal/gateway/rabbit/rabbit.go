// Package rabbit implements the broker gateway against RabbitMQ.
//
// The control plane (entity CRUD) goes through the management HTTP API; the
// message plane (send, peek, purge) goes through an AMQP 0-9-1 connection.
// The namespace model maps onto RabbitMQ primitives as follows:
//
//   - a queue is a plain AMQP queue, with a companion "<name>.dlq" queue
//     wired up as its dead-letter target
//   - a topic is a topic exchange carrying the "x-busview-entity" argument
//   - a subscription is a queue named "<topic>.<name>" carrying the
//     "x-busview-topic" argument, bound to its topic with a catch-all binding
//   - a rule is a binding from the topic to the subscription queue carrying
//     the "x-busview-rule" argument; the filter is stored in binding
//     arguments, since RabbitMQ cannot evaluate filter expressions
package rabbit

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/busview/busview/internal/gateway"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Arguments marking busview-managed entities apart from pre-existing broker
// topology.
const (
	argEntityMarker = "x-busview-entity"
	argTopicOwner   = "x-busview-topic"
	argRuleName     = "x-busview-rule"
	argFilterKind   = "x-busview-filter-kind"
	argFilterExpr   = "x-busview-filter"
	argRuleAction   = "x-busview-action"
)

const deadLetterQueueSuffix = ".dlq"

type Config struct {
	ConnectionString string

	// ManagementURL overrides the management API endpoint. When empty it is
	// derived from the connection string: same host and credentials, port
	// 15672, plain http.
	ManagementURL string
}

// Gateway talks to one RabbitMQ node over both planes.
type Gateway struct {
	conn *amqp091.Connection
	mgmt *managementClient
}

var _ gateway.Gateway = (*Gateway)(nil)

// New dials the broker and prepares the management client. The AMQP
// connection is established eagerly so a bad descriptor fails here, not on
// the first operation.
func New(cfg Config) (*Gateway, error) {
	mgmtURL := cfg.ManagementURL
	if mgmtURL == "" {
		derived, err := DeriveManagementURL(cfg.ConnectionString)
		if err != nil {
			return nil, err
		}
		mgmtURL = derived
	}
	vhost, err := VHostFromConnectionString(cfg.ConnectionString)
	if err != nil {
		return nil, err
	}
	mgmt, err := newManagementClient(mgmtURL, vhost)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("vhost", vhost).Msg("Connecting to broker")
	conn, err := amqp091.Dial(cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	return &Gateway{conn: conn, mgmt: mgmt}, nil
}

// NewFactory returns a gateway factory bound to an optional management URL
// override. The coordinator calls it when the operator changes connections.
func NewFactory(managementURL string) gateway.Factory {
	return func(connectionString string) (gateway.Gateway, error) {
		return New(Config{ConnectionString: connectionString, ManagementURL: managementURL})
	}
}

func (g *Gateway) Close() error {
	if g.conn == nil || g.conn.IsClosed() {
		return nil
	}
	return g.conn.Close()
}

// DeriveManagementURL maps an amqp:// descriptor onto the conventional
// management endpoint of the same node.
func DeriveManagementURL(connectionString string) (string, error) {
	u, err := url.Parse(connectionString)
	if err != nil {
		return "", fmt.Errorf("invalid connection string: %w", err)
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", fmt.Errorf("unsupported connection scheme '%s'", u.Scheme)
	}
	scheme := "http"
	if u.Scheme == "amqps" {
		scheme = "https"
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("connection string has no host")
	}
	derived := &url.URL{Scheme: scheme, Host: host + ":15672", User: u.User}
	return derived.String(), nil
}

// VHostFromConnectionString extracts the vhost segment; an empty or "/" path
// is the default vhost.
func VHostFromConnectionString(connectionString string) (string, error) {
	u, err := url.Parse(connectionString)
	if err != nil {
		return "", fmt.Errorf("invalid connection string: %w", err)
	}
	vhost := strings.TrimPrefix(u.Path, "/")
	if vhost == "" {
		vhost = "/"
	}
	return vhost, nil
}

func deadLetterQueueName(queue string) string {
	return queue + deadLetterQueueSuffix
}

func subscriptionQueueName(topic, subscription string) string {
	return topic + "." + subscription
}

func subscriptionNameFromQueue(topic, queue string) string {
	return strings.TrimPrefix(queue, topic+".")
}

// PTnHnMnS, validated upstream by the create-option tables
var isoDurationRegex = regexp.MustCompile(`^PT(?:([0-9]+)H)?(?:([0-9]+)M)?(?:([0-9]+)S)?$`)

// isoDurationToMillis converts a PTnHnMnS duration to the millisecond values
// RabbitMQ arguments use. Unparseable input yields 0 and false.
func isoDurationToMillis(raw string) (int64, bool) {
	m := isoDurationRegex.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	var d time.Duration
	parse := func(s string, unit time.Duration) {
		if s == "" {
			return
		}
		var n int64
		fmt.Sscanf(s, "%d", &n)
		d += time.Duration(n) * unit
	}
	parse(m[1], time.Hour)
	parse(m[2], time.Minute)
	parse(m[3], time.Second)
	return d.Milliseconds(), true
}
