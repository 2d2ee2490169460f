// Package quote fetches current market prices for investments.
//
// A price source is a JSON document at a URL and a JSONPath expression
// selecting the price in it, see finance.QuoteSource.
package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/finance"
	"github.com/etnz/finance/date"
	"github.com/rs/zerolog"
)

// ErrNoSource is returned for an investment without a quote URL.
var ErrNoSource = errors.New("no quote source")

// Fetcher retrieves prices over HTTP.
type Fetcher struct {
	client *http.Client
	log    zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option { return func(f *Fetcher) { f.client = c } }

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option { return func(f *Fetcher) { f.log = log } }

// WithDailyCache keeps successful responses in dir until the end of the day.
func WithDailyCache(dir string) Option {
	return func(f *Fetcher) {
		base := f.client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		if dir == "" {
			dir = os.TempDir()
		}
		client := *f.client
		client.Transport = &diskCache{base: base, dir: dir, today: date.Today, log: f.log}
		f.client = &client
	}
}

// NewFetcher returns a Fetcher using a plain HTTP client by default.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{client: new(http.Client), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the price selected by src.Path in the JSON document at src.URL.
// An empty path expects the document to be the price itself.
func (f *Fetcher) Fetch(ctx context.Context, src finance.QuoteSource) (finance.Money, error) {
	if src.URL == "" {
		return finance.Money{}, ErrNoSource
	}
	var doc any
	if err := f.getJSON(ctx, src.URL, &doc); err != nil {
		return finance.Money{}, err
	}
	val := doc
	if src.Path != "" {
		v, err := jsonpath.Get(src.Path, doc)
		if err != nil {
			return finance.Money{}, fmt.Errorf("cannot evaluate %q on %s: %w", src.Path, src.URL, err)
		}
		val = v
	}
	// jsonpath may return a list of one answer or the answer itself.
	if list, ok := val.([]any); ok && len(list) > 0 {
		val = list[0]
	}
	price, err := parsePrice(val)
	if err != nil {
		return finance.Money{}, fmt.Errorf("cannot read price from %s at %q: %w", src.URL, src.Path, err)
	}
	return price, nil
}

// parsePrice accepts a JSON number or a string like "1 234,50".
func parsePrice(val any) (finance.Money, error) {
	var v float64
	switch x := val.(type) {
	case float64:
		v = x
	case string:
		s := strings.ReplaceAll(strings.ReplaceAll(x, " ", ""), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return finance.Money{}, fmt.Errorf("invalid price %q: %w", x, err)
		}
		v = f
	default:
		return finance.Money{}, fmt.Errorf("not a price: %v", val)
	}
	if v <= 0 {
		return finance.Money{}, fmt.Errorf("not a positive price: %v", v)
	}
	return finance.M(v), nil
}

func (f *Fetcher) getJSON(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}

// Update is the outcome of refreshing one investment.
type Update struct {
	Investment finance.Investment
	Price      finance.Money
	Err        error
}

// UpdateAll fetches the price of every investment with a quote source and
// stores it as the current price. Failures are reported per investment and joined.
func UpdateAll(ctx context.Context, l *finance.Ledger, f *Fetcher) ([]Update, error) {
	invs, err := l.Store().Investments(ctx)
	if err != nil {
		return nil, err
	}
	var updates []Update
	var errs []error
	for _, inv := range invs {
		if inv.Quote.URL == "" {
			continue
		}
		u := Update{Investment: inv}
		u.Price, u.Err = f.Fetch(ctx, inv.Quote)
		if u.Err == nil {
			u.Investment, u.Err = l.SetCurrentPrice(ctx, inv.ID, u.Price)
		}
		if u.Err != nil {
			u.Err = fmt.Errorf("%s: %w", inv.Ticker, u.Err)
			errs = append(errs, u.Err)
			f.log.Warn().Err(u.Err).Str("investment", inv.ID).Msg("quote update failed")
		} else {
			f.log.Info().Str("investment", inv.ID).Stringer("price", u.Price).Msg("quote updated")
		}
		updates = append(updates, u)
	}
	return updates, errors.Join(errs...)
}
