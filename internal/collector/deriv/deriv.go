// Package deriv implements a candle provider backed by the Deriv
// WebSocket API (ticks_history with candle style).
package deriv

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/horaciomoreno100/deriv-bot/internal/core"
)

const (
	defaultEndpoint = "wss://ws.derivws.com/websockets/v3"

	// Deriv caps ticks_history at 5000 candles per request; longer
	// ranges page through consecutive windows.
	maxCandlesPerRequest = 5000

	readTimeout = 30 * time.Second
)

// Config holds the connection settings.
type Config struct {
	AppID    string
	Token    string // optional, only needed for account-scoped calls
	Endpoint string
}

// Client is a Deriv WebSocket API client. It is not safe for
// concurrent use; the fetch command drives it from a single goroutine.
type Client struct {
	cfg     Config
	conn    *websocket.Conn
	limiter *rate.Limiter
	log     *zap.Logger
	reqID   int
}

// Option customizes the client.
type Option func(*Client)

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// New creates a disconnected client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.AppID == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("deriv app_id is required"))
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}

	c := &Client{
		cfg: cfg,
		// Deriv allows ~5 general calls per second per connection.
		limiter: rate.NewLimiter(rate.Limit(4), 1),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Name() string {
	return "deriv"
}

// Connect dials the WebSocket endpoint and authorizes when a token is
// configured.
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("parsing endpoint: %w", err))
	}
	q := u.Query()
	q.Set("app_id", c.cfg.AppID)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return core.WrapError(core.ErrFeedFailed, fmt.Errorf("dialing %s: %w", u.Host, err))
	}
	c.conn = conn
	c.log.Debug("connected", zap.String("endpoint", u.Host))

	if c.cfg.Token != "" {
		if err := c.authorize(ctx); err != nil {
			conn.Close()
			c.conn = nil
			return err
		}
	}
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) authorize(ctx context.Context) error {
	var resp apiResponse
	if err := c.call(ctx, authorizeRequest{Authorize: c.cfg.Token}, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return core.WrapError(core.ErrFeedFailed,
			fmt.Errorf("authorize rejected: %s (%s)", resp.Error.Message, resp.Error.Code))
	}
	c.log.Debug("authorized")
	return nil
}

// FetchCandles pages through ticks_history requests until the range is
// covered. Candles are returned oldest to newest.
func (c *Client) FetchCandles(ctx context.Context, symbol string, granularity int, start, end time.Time) ([]core.Candle, error) {
	if c.conn == nil {
		return nil, core.WrapError(core.ErrFeedFailed, fmt.Errorf("not connected"))
	}
	if granularity < 1 {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("granularity must be positive, got %d", granularity))
	}

	var out []core.Candle
	cursor := start.Unix()
	endEpoch := end.Unix()

	for cursor <= endEpoch {
		req := historyRequest{
			TicksHistory:    symbol,
			Style:           "candles",
			Granularity:     granularity,
			Start:           cursor,
			End:             endEpoch,
			AdjustStartTime: 1,
			Count:           maxCandlesPerRequest,
		}

		var resp apiResponse
		if err := c.call(ctx, &req, &resp); err != nil {
			return nil, err
		}
		if resp.Error != nil {
			return nil, core.WrapError(core.ErrFeedFailed,
				fmt.Errorf("ticks_history %s: %s (%s)", symbol, resp.Error.Message, resp.Error.Code))
		}
		if len(resp.Candles) == 0 {
			break
		}

		for _, rc := range resp.Candles {
			out = append(out, core.Candle{
				Symbol:      symbol,
				Granularity: granularity,
				Epoch:       time.Unix(rc.Epoch, 0).UTC(),
				Open:        rc.Open,
				High:        rc.High,
				Low:         rc.Low,
				Close:       rc.Close,
			})
		}

		last := resp.Candles[len(resp.Candles)-1].Epoch
		c.log.Debug("fetched page",
			zap.String("symbol", symbol),
			zap.Int("count", len(resp.Candles)),
			zap.Int64("last_epoch", last))

		if len(resp.Candles) < maxCandlesPerRequest {
			break
		}
		cursor = last + int64(granularity)
	}

	if len(out) == 0 {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("no candles for %s between %s and %s", symbol, start.Format(time.RFC3339), end.Format(time.RFC3339)))
	}
	return out, nil
}

// call sends one request and reads one response, enforcing the rate
// limit and the context deadline.
func (c *Client) call(ctx context.Context, req any, resp *apiResponse) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return core.WrapError(core.ErrFeedTimeout, err)
	}

	c.reqID++
	switch r := req.(type) {
	case authorizeRequest:
		r.ReqID = c.reqID
		req = r
	case *historyRequest:
		r.ReqID = c.reqID
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetReadDeadline(deadline)
	} else {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	}

	if err := c.conn.WriteJSON(req); err != nil {
		return core.WrapError(core.ErrFeedFailed, fmt.Errorf("writing request: %w", err))
	}
	if err := c.conn.ReadJSON(resp); err != nil {
		return core.WrapError(core.ErrFeedFailed, fmt.Errorf("reading response: %w", err))
	}
	return nil
}
