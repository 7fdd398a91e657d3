package odoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/kolo/xmlrpc"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
)

var (
	ErrInvalidConfig  = errors.New("odoo config is incomplete")
	ErrNotConnected   = errors.New("odoo client is not connected")
	ErrAuthentication = errors.New("odoo authentication failed")
)

type Config struct {
	URL      string `envconfig:"URL"`
	Database string `envconfig:"DATABASE"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
}

func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.URL) == "" {
		missing = append(missing, "URL")
	}
	if strings.TrimSpace(c.Database) == "" {
		missing = append(missing, "DATABASE")
	}
	if strings.TrimSpace(c.Username) == "" {
		missing = append(missing, "USERNAME")
	}
	if c.Password == "" {
		missing = append(missing, "PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	return nil
}

// Caller is the XML-RPC endpoint surface; *xmlrpc.Client satisfies it.
type Caller interface {
	Call(serviceMethod string, args any, reply any) error
}

// Dialer opens a Caller for one endpoint URL.
type Dialer func(url string) (Caller, error)

type Option func(*Client)

func WithDialer(dial Dialer) Option {
	return func(c *Client) {
		if dial != nil {
			c.dial = dial
		}
	}
}

func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.dial = xmlrpcDialer(transport)
	}
}

// Client holds one authenticated session. Calls are blocking and are not
// retried; after a failure the caller decides whether to Connect again.
type Client struct {
	cfg  Config
	dial Dialer

	mu            sync.RWMutex
	object        Caller
	uid           int64
	serverVersion string
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.URL = strings.TrimRight(strings.TrimSpace(cfg.URL), "/")

	c := &Client{
		cfg:  cfg,
		dial: xmlrpcDialer(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func xmlrpcDialer(transport http.RoundTripper) Dialer {
	return func(url string) (Caller, error) {
		return xmlrpc.NewClient(url, transport)
	}
}

// Connect performs the version handshake and authenticates.
func (c *Client) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	common, err := c.dial(c.cfg.URL + "/xmlrpc/2/common")
	if err != nil {
		return fmt.Errorf("dial common endpoint: %w", err)
	}

	var version any
	if err := common.Call("version", nil, &version); err != nil {
		return fmt.Errorf("version handshake: %w", err)
	}

	var uidReply any
	err = common.Call("authenticate", []any{c.cfg.Database, c.cfg.Username, c.cfg.Password, map[string]any{}}, &uidReply)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	uid, ok := uidReply.(int64)
	if !ok || uid == 0 {
		return fmt.Errorf("%w: invalid credentials for %s", ErrAuthentication, c.cfg.Username)
	}

	object, err := c.dial(c.cfg.URL + "/xmlrpc/2/object")
	if err != nil {
		return fmt.Errorf("dial object endpoint: %w", err)
	}

	serverVersion := ""
	if m, ok := version.(map[string]any); ok {
		serverVersion = cast.ToString(m["server_version"])
	}

	c.mu.Lock()
	c.object = object
	c.uid = uid
	c.serverVersion = serverVersion
	c.mu.Unlock()

	log.Info().
		Str("url", c.cfg.URL).
		Str("database", c.cfg.Database).
		Int64("uid", uid).
		Str("server_version", serverVersion).
		Msg("odoo connected")
	return nil
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.object = nil
	c.uid = 0
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.object != nil
}

func (c *Client) ServerVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverVersion
}

func (c *Client) Search(ctx context.Context, model string, domain []any, limit int) ([]int64, error) {
	kwargs := map[string]any{}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	reply, err := c.execute(ctx, model, "search", []any{domain}, kwargs)
	if err != nil {
		return nil, err
	}

	items, ok := reply.([]any)
	if !ok {
		return nil, fmt.Errorf("search %s: unexpected reply %T", model, reply)
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, err := cast.ToInt64E(item)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", model, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Client) Read(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error) {
	kwargs := map[string]any{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}
	reply, err := c.execute(ctx, model, "read", []any{ids}, kwargs)
	if err != nil {
		return nil, err
	}

	items, ok := reply.([]any)
	if !ok {
		return nil, fmt.Errorf("read %s: unexpected reply %T", model, reply)
	}
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		row, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("read %s: unexpected row %T", model, item)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Client) Create(ctx context.Context, model string, values map[string]any) (int64, error) {
	reply, err := c.execute(ctx, model, "create", []any{values}, nil)
	if err != nil {
		return 0, err
	}
	id, err := cast.ToInt64E(reply)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", model, err)
	}
	return id, nil
}

func (c *Client) Write(ctx context.Context, model string, ids []int64, values map[string]any) error {
	_, err := c.execute(ctx, model, "write", []any{ids, values}, nil)
	return err
}

func (c *Client) Unlink(ctx context.Context, model string, ids []int64) error {
	_, err := c.execute(ctx, model, "unlink", []any{ids}, nil)
	return err
}

func (c *Client) execute(ctx context.Context, model, method string, args []any, kwargs map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	object, uid := c.object, c.uid
	c.mu.RUnlock()
	if object == nil {
		return nil, ErrNotConnected
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	var reply any
	params := []any{c.cfg.Database, uid, c.cfg.Password, model, method, args, kwargs}
	if err := object.Call("execute_kw", params, &reply); err != nil {
		return nil, fmt.Errorf("execute_kw %s.%s: %w", model, method, err)
	}
	return reply, nil
}
