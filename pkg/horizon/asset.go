package horizon

import (
	"fmt"
	"strings"
)

// Asset types as reported by Horizon.
const (
	AssetTypeNative           = "native"
	AssetTypeCreditAlphanum4  = "credit_alphanum4"
	AssetTypeCreditAlphanum12 = "credit_alphanum12"
	AssetTypePoolShare        = "liquidity_pool_shares"
)

const maxAlphanum4Length = 4

// Asset identifies an asset in filters and in resource bodies.
type Asset struct {
	Type   string `json:"asset_type"             yaml:"asset_type"`
	Code   string `json:"asset_code,omitempty"   yaml:"asset_code,omitempty"`
	Issuer string `json:"asset_issuer,omitempty" yaml:"asset_issuer,omitempty"`
}

// NativeAsset returns the network's native asset.
func NativeAsset() Asset {
	return Asset{Type: AssetTypeNative}
}

// CreditAsset returns an issued asset, picking the alphanum type from the code length.
func CreditAsset(code, issuer string) Asset {
	assetType := AssetTypeCreditAlphanum4
	if len(code) > maxAlphanum4Length {
		assetType = AssetTypeCreditAlphanum12
	}

	return Asset{Type: assetType, Code: code, Issuer: issuer}
}

// ParseAsset accepts "native" or "CODE:ISSUER".
func ParseAsset(value string) (Asset, error) {
	if strings.EqualFold(value, AssetTypeNative) {
		return NativeAsset(), nil
	}

	code, issuer, found := strings.Cut(value, ":")
	if !found || code == "" || issuer == "" {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAssetString, value)
	}

	return CreditAsset(code, issuer), nil
}

// IsNative reports whether the asset is the native asset.
func (a Asset) IsNative() bool {
	return a.Type == AssetTypeNative
}

// String renders the canonical "native" or "CODE:ISSUER" form.
func (a Asset) String() string {
	if a.IsNative() {
		return AssetTypeNative
	}

	return a.Code + ":" + a.Issuer
}

// params renders the asset as query parameters under prefix.
func (a Asset) params(prefix string) map[string]string {
	key := func(name string) string {
		if prefix == "" {
			return name
		}

		return prefix + "_" + name
	}

	params := map[string]string{key("asset_type"): a.Type}
	if !a.IsNative() {
		params[key("asset_code")] = a.Code
		params[key("asset_issuer")] = a.Issuer
	}

	return params
}
