package enum

import "ledger/pkg/exception"

// AssetKind crypto, fiat
type AssetKind uint8

const (
	_asset_kind_beg AssetKind = iota
	AssetKindCrypto
	AssetKindFiat
	_asset_kind_end
)

var assetKindNames = [...]string{"", "crypto", "fiat"}

func (k AssetKind) IsAvailable() bool {
	return k > _asset_kind_beg && k < _asset_kind_end
}

func (k AssetKind) String() string {
	if !k.IsAvailable() {
		return "unknown"
	}
	return assetKindNames[k]
}

func (k AssetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *AssetKind) UnmarshalText(text []byte) error {
	v, ok := lookup(assetKindNames[:], string(text))
	if !ok {
		return exception.ErrInvalidEnum
	}
	*k = AssetKind(v)
	return nil
}
