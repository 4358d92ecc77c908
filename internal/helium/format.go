package helium

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/keepmind9/heliumbot/internal/card"
	"github.com/keepmind9/heliumbot/internal/geo"
	"github.com/keepmind9/heliumbot/pkg/constants"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const footer = "Data from api.helium.io"

// nameWords is the number of words in a hotspot name
const nameWords = 3

// LookupKey builds the hotspot-by-name key: the first three words,
// lower-cased and joined with dashes.
func LookupKey(words []string) string {
	fields := firstWords(words)
	for i, w := range fields {
		fields[i] = strings.ToLower(w)
	}
	return strings.Join(fields, "-")
}

// DisplayName title-cases each of the first three words
func DisplayName(words []string) string {
	fields := firstWords(words)
	// a Caser holds state and must not be shared between goroutines
	title := cases.Title(language.Und)
	for i, w := range fields {
		fields[i] = title.String(w)
	}
	return strings.Join(fields, " ")
}

func firstWords(words []string) []string {
	fields := strings.Fields(strings.Join(words, " "))
	if len(fields) > nameWords {
		fields = fields[:nameWords]
	}
	return fields
}

// OnlinePercent is the "Online %" figure shown on the stats card:
// (hotspots - online) / ((hotspots + online) / 2) * 100, rounded to two
// decimals. It is 0 when both counts are 0.
func OnlinePercent(hotspots, online int64) float64 {
	if hotspots+online == 0 {
		return 0
	}
	h, o := float64(hotspots), float64(online)
	return math.Round((h-o)/((h+o)/2)*100*100) / 100
}

// Formatter turns decoded explorer payloads into replies
type Formatter struct {
	ExplorerURL string
	Lists       card.ListPolicy
}

// NewFormatter returns a formatter linking to explorerURL, or the public
// explorer when empty
func NewFormatter(explorerURL string, lists card.ListPolicy) Formatter {
	if explorerURL == "" {
		explorerURL = constants.DefaultExplorerURL
	}
	return Formatter{ExplorerURL: strings.TrimRight(explorerURL, "/"), Lists: lists}
}

func (f Formatter) link(kind, id string) string {
	return f.ExplorerURL + "/" + kind + "/" + id
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func ftoa(x float64) string { return strconv.FormatFloat(x, 'f', -1, 64) }

func unixTime(ts int64) string {
	return fmt.Sprintf("%d (%s)", ts, time.Unix(ts, 0).UTC().Format(time.RFC3339))
}

// Stats renders the blockchain stats card
func (f Formatter) Stats(s Stats) *card.Card {
	c := card.New("Helium Stats")
	c.URL = f.ExplorerURL
	c.AddField("Token Supply", ftoa(s.TokenSupply), false).
		AddField("Hotspots", itoa(s.Counts.Hotspots), true).
		AddField("Hotspots Online", itoa(s.Counts.HotspotsOnline), true).
		AddField("Online %", ftoa(OnlinePercent(s.Counts.Hotspots, s.Counts.HotspotsOnline)), true).
		AddField("Validators", itoa(s.Counts.Validators), true).
		AddField("OUIs", itoa(s.Counts.OUIs), true).
		AddField("Blocks", itoa(s.Counts.Blocks), true).
		AddField("Challenges", itoa(s.Counts.Challenges), true).
		AddField("Cities", itoa(s.Counts.Cities), true).
		AddField("Countries", itoa(s.Counts.Countries), true)
	c.Footer = footer
	return c
}

// TokenSupply renders the circulating supply card
func (f Formatter) TokenSupply(s TokenSupply) *card.Card {
	c := card.New("Token Supply")
	c.AddField("HNT", ftoa(s.TokenSupply), false)
	c.Footer = footer
	return c
}

// BlockHeight renders the block height card. maxTime is echoed when the
// height was bounded by it.
func (f Formatter) BlockHeight(h Height, maxTime string) *card.Card {
	c := card.New("Block Height")
	c.URL = f.link("blocks", itoa(h.Height))
	c.AddField("Height", itoa(h.Height), true)
	if maxTime != "" {
		c.AddField("Before", maxTime, true)
	}
	c.Footer = footer
	return c
}

// BlockStats renders block time averages per window
func (f Formatter) BlockStats(s BlockStats) *card.Card {
	c := card.New("Block Stats")
	c.Description = "Block time in seconds"
	for _, w := range []struct {
		name string
		iv   Interval
	}{
		{"Last Hour", s.LastHour},
		{"Last Day", s.LastDay},
		{"Last Week", s.LastWeek},
		{"Last Month", s.LastMonth},
	} {
		c.AddField(w.name, fmt.Sprintf("avg %s, stddev %s", ftoa(w.iv.Avg), ftoa(w.iv.Stddev)), true)
	}
	c.Footer = footer
	return c
}

// Block renders one block descriptor
func (f Formatter) Block(b Block) *card.Card {
	c := card.New("Block " + itoa(b.Height))
	c.URL = f.link("blocks", itoa(b.Height))
	c.AddField("Hash", b.Hash, false).
		AddField("Height", itoa(b.Height), true).
		AddField("Transactions", itoa(b.TransactionCount), true).
		AddField("Time", unixTime(b.Time), false).
		AddField("Previous Hash", b.PrevHash, false)
	if b.SnapshotHash != "" {
		c.AddField("Snapshot Hash", b.SnapshotHash, false)
	}
	c.Footer = footer
	return c
}

// Blocks renders a block list
func (f Formatter) Blocks(blocks []Block) (card.Reply, error) {
	items := make([]card.Field, len(blocks))
	for i, b := range blocks {
		items[i] = card.Field{
			Name:  "Block " + itoa(b.Height),
			Value: fmt.Sprintf("%s (%d transactions)", b.Hash, b.TransactionCount),
		}
	}
	return f.Lists.Render("Blocks", items)
}

// Transactions renders the transactions of one block
func (f Formatter) Transactions(block string, txns []Transaction) (card.Reply, error) {
	items := make([]card.Field, len(txns))
	for i, t := range txns {
		items[i] = card.Field{Name: t.Type, Value: t.Hash}
	}
	return f.Lists.Render("Transactions in block "+block, items)
}

// RichAccounts renders the accounts with the highest balance
func (f Formatter) RichAccounts(accounts []Account) (card.Reply, error) {
	items := make([]card.Field, len(accounts))
	for i, a := range accounts {
		items[i] = card.Field{Name: a.Address, Value: itoa(a.Balance) + " bones"}
	}
	return f.Lists.Render("Richest Accounts", items)
}

// Account renders one account record
func (f Formatter) Account(a Account) *card.Card {
	c := card.New("Account")
	c.URL = f.link("accounts", a.Address)
	c.Description = a.Address
	c.AddField("Balance (bones)", itoa(a.Balance), true).
		AddField("DC Balance", itoa(a.DCBalance), true).
		AddField("Security Balance", itoa(a.SecBalance), true).
		AddField("Nonce", itoa(a.Nonce), true)
	if a.StakedBalance != 0 {
		c.AddField("Staked Balance", itoa(a.StakedBalance), true)
	}
	if a.SpeculativeNonce != 0 {
		c.AddField("Speculative Nonce", itoa(a.SpeculativeNonce), true)
	}
	c.Footer = fmt.Sprintf("1 HNT = %d bones", constants.Bones)
	return c
}

// Hotspots renders the hotspots owned by an account
func (f Formatter) Hotspots(address string, hotspots []Hotspot) (card.Reply, error) {
	items := make([]card.Field, len(hotspots))
	for i, h := range hotspots {
		items[i] = card.Field{
			Name:  DisplayName(strings.Split(h.Name, "-")),
			Value: fmt.Sprintf("%s, %s, %s", h.Status.Online, h.Mode, locationText(h)),
		}
	}
	return f.Lists.Render("Hotspots for "+address, items)
}

// Validators renders the validators owned by an account
func (f Formatter) Validators(address string, validators []Validator) (card.Reply, error) {
	items := make([]card.Field, len(validators))
	for i, v := range validators {
		items[i] = card.Field{
			Name:  v.Address,
			Value: fmt.Sprintf("%s, stake %d", v.Status.Online, v.Stake),
		}
	}
	return f.Lists.Render("Validators for "+address, items)
}

// OUIs renders the OUIs owned by an account
func (f Formatter) OUIs(address string, ouis []OUI) (card.Reply, error) {
	items := make([]card.Field, len(ouis))
	for i, o := range ouis {
		items[i] = card.Field{
			Name:  "OUI " + itoa(o.OUI),
			Value: fmt.Sprintf("%d router addresses, nonce %d", len(o.Addresses), o.Nonce),
		}
	}
	return f.Lists.Render("OUIs for "+address, items)
}

// Hotspot renders a hotspot looked up by the words the caller typed
func (f Formatter) Hotspot(words []string, h Hotspot) *card.Card {
	c := card.New(DisplayName(words))
	c.URL = f.link("hotspots", h.Address)
	if h.Owner != "" {
		c.Description = "Owner: " + h.Owner
	}
	c.AddField("Address", h.Address, false).
		AddField("Name", h.Name, true).
		AddField("Status", h.Status.Online, true).
		AddField("Mode", h.Mode, true).
		AddField("Location", locationText(h), true)
	if h.LocationHex != nil {
		c.AddField("Location Hex", *h.LocationHex, true)
	}
	c.AddField("Block Added", itoa(h.BlockAdded), true).
		AddField("Added", h.TimestampAdded, true)
	c.Footer = footer
	return c
}

func locationText(h Hotspot) string {
	p, ok := hotspotPoint(h)
	if !ok {
		return "not asserted"
	}
	return p.String()
}

func hotspotPoint(h Hotspot) (geo.Point, bool) {
	if h.Lat == nil || h.Lng == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *h.Lat, Lon: *h.Lng}, true
}

// Distance renders the distance between two named points
func (f Formatter) Distance(fromName string, from geo.Point, toName string, to geo.Point) *card.Card {
	d := geo.Between(from, to)
	c := card.New("Distance")
	c.AddField("From", fmt.Sprintf("%s (%s)", fromName, from), false).
		AddField("To", fmt.Sprintf("%s (%s)", toName, to), false).
		AddField("Kilometers", ftoa(d.Kilometers), true).
		AddField("Miles", ftoa(d.Miles), true)
	return c
}

// HotspotDistance renders the distance between two hotspots. Hotspots
// without an asserted location get a not-found card.
func (f Formatter) HotspotDistance(a, b Hotspot) *card.Card {
	pa, ok := hotspotPoint(a)
	if !ok {
		return card.NotFound("Hotspot location", a.Name)
	}
	pb, ok := hotspotPoint(b)
	if !ok {
		return card.NotFound("Hotspot location", b.Name)
	}
	nameA := DisplayName(strings.Split(a.Name, "-"))
	nameB := DisplayName(strings.Split(b.Name, "-"))
	c := f.Distance(nameA, pa, nameB, pb)
	c.Title = nameA + " to " + nameB
	return c
}

// Migration renders a wallet migration lookup
func (f Formatter) Migration(address string, m Migration) (card.Reply, error) {
	if m.Count == 0 && len(m.Transactions) == 0 {
		c := card.New("Wallet Migration")
		c.Description = address
		c.AddField("Transactions", "0", true)
		c.Footer = "No migration transactions found"
		return card.CardReply(c), nil
	}

	items := make([]card.Field, len(m.Transactions))
	for i, t := range m.Transactions {
		name := t.Type
		if name == "" {
			name = "transaction"
		}
		value := t.Hash
		if t.Status != "" {
			value += " (" + t.Status + ")"
		}
		items[i] = card.Field{Name: name, Value: value}
	}
	reply, err := f.Lists.Render(fmt.Sprintf("Wallet Migration (%d)", m.Count), items)
	if err != nil {
		return card.Reply{}, err
	}
	if reply.Card != nil {
		reply.Card.Description = address
	}
	return reply, nil
}
