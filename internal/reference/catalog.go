package reference

import (
	"strings"

	"github.com/yanun0323/errors"

	"ledger/internal/model/enum"
	"ledger/pkg/exception"
)

// AssetSpec describes an asset to seed.
type AssetSpec struct {
	Symbol string         `json:"symbol"`
	Kind   enum.AssetKind `json:"kind"`
}

// PairSpec describes a trading pair to seed.
type PairSpec struct {
	Base     string `json:"base"`
	Quote    string `json:"quote"`
	Inactive bool   `json:"inactive"`
}

// Name returns the canonical pair name, e.g. BTC/USDT.
func (p PairSpec) Name() string {
	return PairName(p.Base, p.Quote)
}

// PairName joins base and quote symbols into a pair name.
func PairName(base, quote string) string {
	return strings.ToUpper(base) + "/" + strings.ToUpper(quote)
}

// Catalog is a validated, in-memory set of assets and pairs ready to be seeded.
type Catalog struct {
	assets      []AssetSpec
	pairs       []PairSpec
	assetByName map[string]int
	pairByName  map[string]int
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		assetByName: make(map[string]int),
		pairByName:  make(map[string]int),
	}
}

// AddAsset registers a new asset.
func (c *Catalog) AddAsset(spec AssetSpec) error {
	spec.Symbol = strings.ToUpper(strings.TrimSpace(spec.Symbol))
	if spec.Symbol == "" {
		return errors.Wrap(exception.ErrInvalidArgument, "asset symbol is empty")
	}
	if !spec.Kind.IsAvailable() {
		return errors.Wrapf(exception.ErrInvalidEnum, "asset %s kind", spec.Symbol)
	}
	if _, ok := c.assetByName[spec.Symbol]; ok {
		return errors.Wrapf(exception.ErrInvalidArgument, "asset already exists: %s", spec.Symbol)
	}
	c.assetByName[spec.Symbol] = len(c.assets)
	c.assets = append(c.assets, spec)
	return nil
}

// AddPair registers a new pair. Both assets must already be in the catalog.
func (c *Catalog) AddPair(spec PairSpec) error {
	spec.Base = strings.ToUpper(strings.TrimSpace(spec.Base))
	spec.Quote = strings.ToUpper(strings.TrimSpace(spec.Quote))
	if spec.Base == spec.Quote {
		return errors.Wrapf(exception.ErrInvalidArgument, "pair %s trades an asset against itself", spec.Name())
	}
	for _, symbol := range []string{spec.Base, spec.Quote} {
		if _, ok := c.assetByName[symbol]; !ok {
			return errors.Wrapf(exception.ErrUnknownAsset, "pair %s references %q", spec.Name(), symbol)
		}
	}
	if _, ok := c.pairByName[spec.Name()]; ok {
		return errors.Wrapf(exception.ErrInvalidArgument, "pair already exists: %s", spec.Name())
	}
	c.pairByName[spec.Name()] = len(c.pairs)
	c.pairs = append(c.pairs, spec)
	return nil
}

// Assets returns the registered assets in insertion order.
func (c *Catalog) Assets() []AssetSpec {
	return c.assets
}

// Pairs returns the registered pairs in insertion order.
func (c *Catalog) Pairs() []PairSpec {
	return c.pairs
}
