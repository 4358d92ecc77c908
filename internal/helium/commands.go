package helium

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/keepmind9/heliumbot/internal/card"
	"github.com/keepmind9/heliumbot/internal/command"
	"github.com/keepmind9/heliumbot/internal/geo"
	"github.com/keepmind9/heliumbot/internal/logger"
	"github.com/sirupsen/logrus"
)

// Service holds the helium command handlers
type Service struct {
	client *Client
	format Formatter
	cities map[string]geo.Point
}

// NewService creates the handlers. cities maps lower-case city names to
// coordinates for the distance command.
func NewService(client *Client, format Formatter, cities map[string]geo.Point) *Service {
	known := make(map[string]geo.Point, len(cities))
	for name, p := range cities {
		known[strings.ToLower(name)] = p
	}
	return &Service{client: client, format: format, cities: known}
}

var (
	addressParam = []command.Param{{Name: "address"}}
	heightParam  = []command.Param{{Name: "height", Kind: command.KindInt}}
	hashParam    = []command.Param{{Name: "hash"}}
)

// Group returns the helium command group
func (s *Service) Group() command.Group {
	return command.Group{
		Name:    "helium",
		Aliases: []string{"hm"},
		Help:    "Commands to view current information on helium miners",
		Commands: []command.Command{
			{Name: "stats", Aliases: []string{"stat", "st"}, Help: "Helium blockchain stats", Handler: s.stats},
			{Name: "tokensupply", Aliases: []string{"supply", "ts"}, Help: "Circulating token supply", Handler: s.tokenSupply},
			{
				Name:    "blockheight",
				Aliases: []string{"block", "bh"},
				Help:    "Current block height, or the last height before max_time (ISO8601 or relative time)",
				Params:  []command.Param{{Name: "max_time", Optional: true}},
				Handler: s.blockHeight,
			},
			{Name: "blockstats", Aliases: []string{"bs"}, Help: "Block time stats", Handler: s.blockStats},
			{Name: "blocks", Help: "Latest block descriptions", Handler: s.blocks},
			{Name: "blockforheight", Aliases: []string{"bfh"}, Help: "Block at height", Params: heightParam, Handler: s.blockForHeight},
			{Name: "blocktrasheight", Aliases: []string{"bth"}, Help: "Transactions of the block at height", Params: heightParam, Handler: s.blockTransactionsForHeight},
			{Name: "blockathash", Aliases: []string{"bah"}, Help: "Block with the given hash", Params: hashParam, Handler: s.blockAtHash},
			{Name: "blocktranshash", Aliases: []string{"btah"}, Help: "Transactions of the block with the given hash", Params: hashParam, Handler: s.blockTransactionsAtHash},
			{
				Name:    "listaccounts",
				Aliases: []string{"la"},
				Help:    "Accounts with the highest balance (up to 100)",
				Params:  []command.Param{{Name: "limit", Kind: command.KindInt, Optional: true, Default: "2"}},
				Handler: s.listAccounts,
			},
			{Name: "accountaddress", Aliases: []string{"aa"}, Help: "Account record for an address", Params: addressParam, Handler: s.account},
			{Name: "hotspotsaccount", Aliases: []string{"hfa"}, Help: "Hotspots owned by an address", Params: addressParam, Handler: s.accountHotspots},
			{Name: "validatorsaccount", Aliases: []string{"vfa"}, Help: "Validators owned by an address", Params: addressParam, Handler: s.accountValidators},
			{Name: "ouisaccount", Aliases: []string{"ofa"}, Help: "OUIs owned by an address", Params: addressParam, Handler: s.accountOUIs},
			{
				Name:    "minername",
				Aliases: []string{"miner", "hotspot", "hs"},
				Help:    "Hotspot by its three word name",
				Params:  []command.Param{{Name: "words", Variadic: true}},
				Handler: s.minerName,
			},
			{
				Name:    "distance",
				Aliases: []string{"dist"},
				Help:    "Distance between two cities, or between lat1 lon1 and lat2 lon2",
				Params:  []command.Param{{Name: "places", Variadic: true}},
				Handler: s.distance,
			},
			{
				Name:    "hotspotdistance",
				Aliases: []string{"hsdist", "hd"},
				Help:    "Distance between two hotspots given by their three word names",
				Params:  []command.Param{{Name: "names", Variadic: true}},
				Handler: s.hotspotDistance,
			},
			{Name: "migration", Aliases: []string{"migrate", "wm"}, Help: "Wallet migration status of an address", Params: addressParam, Handler: s.migration},
		},
	}
}

func (s *Service) stats(ctx context.Context, inv *command.Invocation) error {
	st, err := s.client.Stats(ctx)
	if err != nil {
		return err
	}
	return inv.Reply.SendCard(s.format.Stats(st))
}

func (s *Service) tokenSupply(ctx context.Context, inv *command.Invocation) error {
	ts, err := s.client.TokenSupply(ctx)
	if err != nil {
		return err
	}
	return inv.Reply.SendCard(s.format.TokenSupply(ts))
}

func (s *Service) blockHeight(ctx context.Context, inv *command.Invocation) error {
	maxTime := inv.Args.String("max_time")
	h, err := s.client.BlockHeight(ctx, maxTime)
	if err != nil {
		return err
	}
	return inv.Reply.SendCard(s.format.BlockHeight(h, maxTime))
}

func (s *Service) blockStats(ctx context.Context, inv *command.Invocation) error {
	bs, err := s.client.BlockStats(ctx)
	if err != nil {
		return err
	}
	return inv.Reply.SendCard(s.format.BlockStats(bs))
}

func (s *Service) blocks(ctx context.Context, inv *command.Invocation) error {
	blocks, err := s.client.Blocks(ctx)
	if err != nil {
		return err
	}
	return sendList(inv, func() (card.Reply, error) { return s.format.Blocks(blocks) })
}

func (s *Service) blockForHeight(ctx context.Context, inv *command.Invocation) error {
	b, err := s.client.BlockAtHeight(ctx, inv.Args.Int("height"))
	if err != nil {
		return err
	}
	return inv.Reply.SendCard(s.format.Block(b))
}

func (s *Service) blockTransactionsForHeight(ctx context.Context, inv *command.Invocation) error {
	height := inv.Args.Int("height")
	txns, err := s.client.BlockTransactionsAtHeight(ctx, height)
	if err != nil {
		return err
	}
	return sendList(inv, func() (card.Reply, error) {
		return s.format.Transactions(strconv.Itoa(height), txns)
	})
}

func (s *Service) blockAtHash(ctx context.Context, inv *command.Invocation) error {
	b, err := s.client.BlockAtHash(ctx, inv.Args.String("hash"))
	if err != nil {
		return err
	}
	return inv.Reply.SendCard(s.format.Block(b))
}

func (s *Service) blockTransactionsAtHash(ctx context.Context, inv *command.Invocation) error {
	hash := inv.Args.String("hash")
	txns, err := s.client.BlockTransactionsAtHash(ctx, hash)
	if err != nil {
		return err
	}
	return sendList(inv, func() (card.Reply, error) { return s.format.Transactions(hash, txns) })
}

func (s *Service) listAccounts(ctx context.Context, inv *command.Invocation) error {
	accounts, err := s.client.RichAccounts(ctx, inv.Args.Int("limit"))
	if err != nil {
		return err
	}
	return sendList(inv, func() (card.Reply, error) { return s.format.RichAccounts(accounts) })
}

func (s *Service) account(ctx context.Context, inv *command.Invocation) error {
	a, err := s.client.Account(ctx, inv.Args.String("address"))
	if err != nil {
		return err
	}
	return inv.Reply.SendCard(s.format.Account(a))
}

func (s *Service) accountHotspots(ctx context.Context, inv *command.Invocation) error {
	address := inv.Args.String("address")
	hotspots, err := s.client.AccountHotspots(ctx, address)
	if err != nil {
		return err
	}
	return sendList(inv, func() (card.Reply, error) { return s.format.Hotspots(address, hotspots) })
}

func (s *Service) accountValidators(ctx context.Context, inv *command.Invocation) error {
	address := inv.Args.String("address")
	validators, err := s.client.AccountValidators(ctx, address)
	if err != nil {
		return err
	}
	return sendList(inv, func() (card.Reply, error) { return s.format.Validators(address, validators) })
}

func (s *Service) accountOUIs(ctx context.Context, inv *command.Invocation) error {
	address := inv.Args.String("address")
	ouis, err := s.client.AccountOUIs(ctx, address)
	if err != nil {
		return err
	}
	return sendList(inv, func() (card.Reply, error) { return s.format.OUIs(address, ouis) })
}

// lookupHotspot resolves a hotspot by name. found is false when the
// explorer returned no record; name collisions resolve to the first record.
func (s *Service) lookupHotspot(ctx context.Context, words []string) (h Hotspot, key string, found bool, err error) {
	key = LookupKey(words)
	hotspots, err := s.client.HotspotsByName(ctx, key)
	if err != nil {
		return Hotspot{}, key, false, err
	}
	if len(hotspots) == 0 {
		return Hotspot{}, key, false, nil
	}
	if len(hotspots) > 1 {
		logger.WithFields(logrus.Fields{
			"name":    key,
			"records": len(hotspots),
		}).Debug("hotspot-name-collision-using-first")
	}
	return hotspots[0], key, true, nil
}

func (s *Service) minerName(ctx context.Context, inv *command.Invocation) error {
	words := inv.Args.Strings("words")
	h, key, found, err := s.lookupHotspot(ctx, words)
	if err != nil {
		return err
	}
	if !found {
		return inv.Reply.SendCard(card.NotFound("Hotspot", key))
	}
	return inv.Reply.SendCard(s.format.Hotspot(words, h))
}

func (s *Service) distance(ctx context.Context, inv *command.Invocation) error {
	places := inv.Args.Strings("places")
	switch len(places) {
	case 2:
		from, err := s.city(places[0])
		if err != nil {
			return err
		}
		to, err := s.city(places[1])
		if err != nil {
			return err
		}
		return inv.Reply.SendCard(s.format.Distance(places[0], from, places[1], to))
	case 4:
		coords := make([]float64, 4)
		for i, raw := range places {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return &command.UsageError{Reason: fmt.Sprintf("coordinate must be a number, got %q", raw)}
			}
			coords[i] = v
		}
		from := geo.Point{Lat: coords[0], Lon: coords[1]}
		to := geo.Point{Lat: coords[2], Lon: coords[3]}
		for _, p := range []geo.Point{from, to} {
			if err := p.Validate(); err != nil {
				return &command.UsageError{Reason: err.Error()}
			}
		}
		return inv.Reply.SendCard(s.format.Distance(from.String(), from, to.String(), to))
	default:
		return &command.UsageError{Reason: "expected two city names or four coordinates"}
	}
}

func (s *Service) city(name string) (geo.Point, error) {
	p, ok := s.cities[strings.ToLower(name)]
	if !ok {
		return geo.Point{}, &command.UsageError{
			Reason: fmt.Sprintf("unknown city %q, known cities: %s", name, strings.Join(s.cityNames(), ", ")),
		}
	}
	return p, nil
}

func (s *Service) cityNames() []string {
	names := make([]string, 0, len(s.cities))
	for name := range s.cities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) hotspotDistance(ctx context.Context, inv *command.Invocation) error {
	words := strings.Fields(strings.Join(inv.Args.Strings("names"), " "))
	if len(words) != 2*nameWords {
		return &command.UsageError{Reason: "expected two three word hotspot names"}
	}

	a, keyA, found, err := s.lookupHotspot(ctx, words[:nameWords])
	if err != nil {
		return err
	}
	if !found {
		return inv.Reply.SendCard(card.NotFound("Hotspot", keyA))
	}
	b, keyB, found, err := s.lookupHotspot(ctx, words[nameWords:])
	if err != nil {
		return err
	}
	if !found {
		return inv.Reply.SendCard(card.NotFound("Hotspot", keyB))
	}
	return inv.Reply.SendCard(s.format.HotspotDistance(a, b))
}

func (s *Service) migration(ctx context.Context, inv *command.Invocation) error {
	address := inv.Args.String("address")
	m, err := s.client.Migration(ctx, address)
	if err != nil {
		return err
	}
	return sendList(inv, func() (card.Reply, error) { return s.format.Migration(address, m) })
}

func sendList(inv *command.Invocation, render func() (card.Reply, error)) error {
	reply, err := render()
	if err != nil {
		return err
	}
	return command.Send(inv.Reply, reply)
}
