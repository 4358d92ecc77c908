// Package helium queries the Helium blockchain explorer API and shapes its
// responses into display cards.
package helium

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/keepmind9/heliumbot/internal/httpapi"
	"github.com/keepmind9/heliumbot/pkg/constants"
)

// Getter is the HTTP collaborator the client needs
type Getter interface {
	GetJSON(ctx context.Context, endpoint, url string, out any) error
}

// Client calls the explorer endpoints, one method per endpoint
type Client struct {
	http         Getter
	baseURL      string
	migrationURL string
}

// NewClient creates an explorer client. Empty URLs select the public
// defaults.
func NewClient(http Getter, baseURL, migrationURL string) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultHeliumAPIURL
	}
	if migrationURL == "" {
		migrationURL = constants.DefaultMigrationURL
	}
	return &Client{
		http:         http,
		baseURL:      strings.TrimRight(baseURL, "/"),
		migrationURL: strings.TrimRight(migrationURL, "/"),
	}
}

func (c *Client) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func get[T any](ctx context.Context, c *Client, name, u string) (T, error) {
	var env envelope[T]
	if err := c.http.GetJSON(ctx, name, u, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

// Stats fetches GET /stats
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	return get[Stats](ctx, c, "stats", c.endpoint("stats"))
}

// TokenSupply fetches GET /stats/token_supply
func (c *Client) TokenSupply(ctx context.Context) (TokenSupply, error) {
	return get[TokenSupply](ctx, c, "token_supply", c.endpoint("stats", "token_supply"))
}

// BlockHeight fetches GET /blocks/height, optionally bounded by maxTime
// (an ISO8601 timestamp or relative time such as "-1 day").
func (c *Client) BlockHeight(ctx context.Context, maxTime string) (Height, error) {
	u := c.endpoint("blocks", "height")
	if maxTime != "" {
		u += "?" + url.Values{"max_time": {maxTime}}.Encode()
	}
	return get[Height](ctx, c, "block_height", u)
}

// BlockStats fetches GET /blocks/stats
func (c *Client) BlockStats(ctx context.Context) (BlockStats, error) {
	return get[BlockStats](ctx, c, "block_stats", c.endpoint("blocks", "stats"))
}

// Blocks fetches the first page of GET /blocks
func (c *Client) Blocks(ctx context.Context) ([]Block, error) {
	return get[[]Block](ctx, c, "blocks", c.endpoint("blocks"))
}

// BlockAtHeight fetches GET /blocks/:height
func (c *Client) BlockAtHeight(ctx context.Context, height int) (Block, error) {
	return get[Block](ctx, c, "block_at_height", c.endpoint("blocks", strconv.Itoa(height)))
}

// BlockTransactionsAtHeight fetches the first page of GET /blocks/:height/transactions
func (c *Client) BlockTransactionsAtHeight(ctx context.Context, height int) ([]Transaction, error) {
	return get[[]Transaction](ctx, c, "block_transactions_at_height",
		c.endpoint("blocks", strconv.Itoa(height), "transactions"))
}

// BlockAtHash fetches GET /blocks/hash/:hash
func (c *Client) BlockAtHash(ctx context.Context, hash string) (Block, error) {
	return get[Block](ctx, c, "block_at_hash", c.endpoint("blocks", "hash", hash))
}

// BlockTransactionsAtHash fetches the first page of GET /blocks/hash/:hash/transactions
func (c *Client) BlockTransactionsAtHash(ctx context.Context, hash string) ([]Transaction, error) {
	return get[[]Transaction](ctx, c, "block_transactions_at_hash",
		c.endpoint("blocks", "hash", hash, "transactions"))
}

// RichAccounts fetches GET /accounts/rich?limit=n. The API caps limit at 100.
func (c *Client) RichAccounts(ctx context.Context, limit int) ([]Account, error) {
	limit = min(max(limit, 1), constants.DefaultRichAccountsMax)
	u := c.endpoint("accounts", "rich") + "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	return get[[]Account](ctx, c, "rich_accounts", u)
}

// Account fetches GET /accounts/:address
func (c *Client) Account(ctx context.Context, address string) (Account, error) {
	return get[Account](ctx, c, "account", c.endpoint("accounts", address))
}

// AccountHotspots fetches the first page of GET /accounts/:address/hotspots
func (c *Client) AccountHotspots(ctx context.Context, address string) ([]Hotspot, error) {
	return get[[]Hotspot](ctx, c, "account_hotspots", c.endpoint("accounts", address, "hotspots"))
}

// AccountValidators fetches the first page of GET /accounts/:address/validators
func (c *Client) AccountValidators(ctx context.Context, address string) ([]Validator, error) {
	return get[[]Validator](ctx, c, "account_validators", c.endpoint("accounts", address, "validators"))
}

// AccountOUIs fetches the first page of GET /accounts/:address/ouis
func (c *Client) AccountOUIs(ctx context.Context, address string) ([]OUI, error) {
	return get[[]OUI](ctx, c, "account_ouis", c.endpoint("accounts", address, "ouis"))
}

// HotspotsByName fetches GET /hotspots/name/:name. Name collisions return
// more than one record.
func (c *Client) HotspotsByName(ctx context.Context, name string) ([]Hotspot, error) {
	return get[[]Hotspot](ctx, c, "hotspots_by_name", c.endpoint("hotspots", "name", name))
}

// Migration looks up the wallet migration status of address
func (c *Client) Migration(ctx context.Context, address string) (Migration, error) {
	var m Migration
	u := c.migrationURL + "/migrate/" + url.PathEscape(address)
	if err := c.http.GetJSON(ctx, "wallet_migration", u, &m); err != nil {
		return Migration{}, err
	}
	return m, nil
}

var _ Getter = (*httpapi.Client)(nil)
