package helium

// envelope is the {"data": ..., "cursor": ...} wrapper every explorer
// endpoint returns. Cursor is present when more pages exist; it is not
// followed.
type envelope[T any] struct {
	Data   T      `json:"data"`
	Cursor string `json:"cursor,omitempty"`
}

// Counts is the counts object of the stats endpoint
type Counts struct {
	Hotspots       int64 `json:"hotspots"`
	HotspotsOnline int64 `json:"hotspots_online"`
	Validators     int64 `json:"validators"`
	Blocks         int64 `json:"blocks"`
	Challenges     int64 `json:"challenges"`
	Cities         int64 `json:"cities"`
	Countries      int64 `json:"countries"`
	OUIs           int64 `json:"ouis"`
	Transactions   int64 `json:"transactions,omitempty"`
}

// Stats is the payload of /stats
type Stats struct {
	TokenSupply float64 `json:"token_supply"`
	Counts      Counts  `json:"counts"`
}

// TokenSupply is the payload of /stats/token_supply
type TokenSupply struct {
	TokenSupply float64 `json:"token_supply"`
}

// Height is the payload of /blocks/height
type Height struct {
	Height int64 `json:"height"`
}

// Interval is the block time average over one window, in seconds
type Interval struct {
	Avg    float64 `json:"avg"`
	Stddev float64 `json:"stddev"`
}

// BlockStats is the payload of /blocks/stats
type BlockStats struct {
	LastHour  Interval `json:"last_hour"`
	LastDay   Interval `json:"last_day"`
	LastWeek  Interval `json:"last_week"`
	LastMonth Interval `json:"last_month"`
}

// Block is a block descriptor
type Block struct {
	Hash             string `json:"hash"`
	Height           int64  `json:"height"`
	Time             int64  `json:"time"`
	TransactionCount int64  `json:"transaction_count"`
	PrevHash         string `json:"prev_hash"`
	SnapshotHash     string `json:"snapshot_hash,omitempty"`
}

// Transaction is the common part of every transaction type
type Transaction struct {
	Type   string `json:"type"`
	Hash   string `json:"hash"`
	Height int64  `json:"height,omitempty"`
	Time   int64  `json:"time,omitempty"`
	Fee    int64  `json:"fee,omitempty"`
}

// Account is an account record. Balances are in bones.
type Account struct {
	Address          string `json:"address"`
	Balance          int64  `json:"balance"`
	DCBalance        int64  `json:"dc_balance"`
	SecBalance       int64  `json:"sec_balance"`
	StakedBalance    int64  `json:"staked_balance,omitempty"`
	Nonce            int64  `json:"nonce"`
	SpeculativeNonce int64  `json:"speculative_nonce,omitempty"`
	Block            int64  `json:"block,omitempty"`
}

// Status is the liveness status of a hotspot or validator
type Status struct {
	Online string `json:"online"`
}

// Hotspot is a hotspot record. Lat and Lng are null for hotspots that
// never asserted a location.
type Hotspot struct {
	Address        string   `json:"address"`
	Name           string   `json:"name"`
	Owner          string   `json:"owner,omitempty"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	Location       *string  `json:"location"`
	LocationHex    *string  `json:"location_hex"`
	Mode           string   `json:"mode"`
	Status         Status   `json:"status"`
	BlockAdded     int64    `json:"block_added"`
	TimestampAdded string   `json:"timestamp_added"`
}

// Validator is a validator record
type Validator struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Stake   int64  `json:"stake"`
	Status  Status `json:"status"`
}

// OUI is an organizationally unique identifier record
type OUI struct {
	OUI       int64    `json:"oui"`
	Owner     string   `json:"owner"`
	Addresses []string `json:"addresses"`
	Nonce     int64    `json:"nonce"`
}

// MigrationTransaction is one wallet migration transaction
type MigrationTransaction struct {
	Hash   string `json:"hash"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

// Migration is the payload of the wallet migration lookup
type Migration struct {
	Count        int64                  `json:"count"`
	Transactions []MigrationTransaction `json:"transactions"`
}
