package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemID_NoVariants(t *testing.T) {
	assert.Equal(t, "A_", ItemID("A", nil))
	assert.Equal(t, "A_", ItemID("A", map[string]string{}))
}

func TestItemID_SortedByKey(t *testing.T) {
	got := ItemID("p1", map[string]string{"size": "M", "color": "red"})
	assert.Equal(t, "p1_color:red|size:M", got)
}

func TestItemID_OrderIndependent(t *testing.T) {
	a := map[string]string{}
	a["size"] = "M"
	a["color"] = "red"
	a["fit"] = "slim"

	b := map[string]string{}
	b["fit"] = "slim"
	b["color"] = "red"
	b["size"] = "M"

	for i := 0; i < 20; i++ {
		assert.Equal(t, ItemID("p", a), ItemID("p", b))
	}
}

func TestItemID_DistinguishesSelections(t *testing.T) {
	m := ItemID("p", map[string]string{"size": "M"})
	s := ItemID("p", map[string]string{"size": "S"})
	assert.NotEqual(t, m, s)
}

func TestVariantKey_ByteWiseOrder(t *testing.T) {
	got := VariantKey(map[string]string{"b": "1", "B": "2", "a": "3"})
	assert.Equal(t, "B:2|a:3|b:1", got)
}

func TestParseVariantKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"single", "size:M", map[string]string{"size": "M"}},
		{"multiple", "color:red|size:M", map[string]string{"color": "red", "size": "M"}},
		{"missing value dropped", "color:|size:M", map[string]string{"size": "M"}},
		{"missing key dropped", ":red|size:M", map[string]string{"size": "M"}},
		{"no separator dropped", "junk|size:M", map[string]string{"size": "M"}},
		{"value keeps later colons", "time:10:30", map[string]string{"time": "10:30"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVariantKey(tt.key))
		})
	}
}

func TestParseVariantKey_InvertsVariantKey(t *testing.T) {
	selected := map[string]string{"color": "red", "size": "M"}
	assert.Equal(t, selected, ParseVariantKey(VariantKey(selected)))
}
