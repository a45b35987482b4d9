package domain

import (
	"sort"
	"strings"
)

const (
	variantPairSep = "|"
	variantKVSep   = ":"
	itemIDSep      = "_"
)

// VariantKey renders selected variants as "key:value" pairs sorted by key and
// joined with "|". No variants yields "".
func VariantKey(selected map[string]string) string {
	if len(selected) == 0 {
		return ""
	}

	keys := make([]string, 0, len(selected))
	for k := range selected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(variantPairSep)
		}
		b.WriteString(k)
		b.WriteString(variantKVSep)
		b.WriteString(selected[k])
	}
	return b.String()
}

// ItemID is the identity of a cart line: a product with a specific variant
// selection. It does not depend on map iteration order.
func ItemID(productID string, selected map[string]string) string {
	return productID + itemIDSep + VariantKey(selected)
}

// ParseVariantKey is the inverse of VariantKey. Each "|"-separated pair is
// split on its first ":"; pairs with an empty key or value are dropped.
func ParseVariantKey(key string) map[string]string {
	selected := make(map[string]string)
	if key == "" {
		return selected
	}

	for _, pair := range strings.Split(key, variantPairSep) {
		k, v, ok := strings.Cut(pair, variantKVSep)
		if !ok || k == "" || v == "" {
			continue
		}
		selected[k] = v
	}
	return selected
}
