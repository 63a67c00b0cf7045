package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGet(t *testing.T) {
	h := NewHeader([]string{"\ufeff商品番号", " 在庫数 ", "商品番号"})
	r := NewRecord(h, []string{" abc ", "3"})

	assert.Equal(t, "abc", r.Get(Name("商品番号")))
	assert.Equal(t, "3", r.Get(Name("在庫数")))
	assert.Equal(t, "3", r.Get(Pos(1)))
	assert.Equal(t, "", r.Get(Pos(5)))
	assert.Equal(t, "", r.Get(Name("missing")))
	assert.Equal(t, "", r.Get(FieldID{}))
	assert.True(t, r.Has(Name("在庫数")))
	assert.False(t, r.Has(Name("missing")))

	headerless := NewRecord(nil, []string{"a", "b"})
	assert.Equal(t, "b", headerless.Get(Pos(1)))
	assert.Equal(t, "", headerless.Get(Name("a")))
}

func TestBuildIndexFirstWins(t *testing.T) {
	h := NewHeader([]string{"code", "stock"})
	records := NewRecords(h, [][]string{
		{"abc001", "5"},
		{"", "9"},
		{"ABC001.0", "0"},
		{"def002", "1"},
	})

	ix := BuildIndex(records, KeySpec{Field: Name("code")})
	require.Equal(t, 2, ix.Len())
	assert.Equal(t, []string{"ABC001", "DEF002"}, ix.Codes())

	r, ok := ix.Lookup("ABC001")
	require.True(t, ok)
	assert.Equal(t, "5", r.Get(Name("stock")), "first record must win")

	_, ok = ix.Lookup("")
	assert.False(t, ok)
}

func TestBuildIndexBracketAndExact(t *testing.T) {
	h := NewHeader([]string{"name"})
	records := NewRecords(h, [][]string{
		{"お礼品 [ abc001 ]"},
		{"お礼品 without code"},
	})
	ix := BuildIndex(records, KeySpec{Field: Name("name"), Bracket: true})
	assert.Equal(t, []string{"ABC001"}, ix.Codes())

	exact := BuildIndex(NewRecords(h, [][]string{{"sku-a"}, {"SKU-A"}}), KeySpec{Field: Name("name"), Exact: true})
	assert.Equal(t, []string{"sku-a", "SKU-A"}, exact.Codes())
}

func TestLookupWithParent(t *testing.T) {
	h := NewHeader([]string{"code", "flag"})
	ix := BuildIndex(NewRecords(h, [][]string{
		{"abc001（親）", "parent"},
		{"def002", "plain"},
		{"def002（親）", "parent"},
	}), KeySpec{Field: Name("code")})

	r, key, ok := ix.LookupWithParent("ABC001", DefaultParentMarker)
	require.True(t, ok)
	assert.Equal(t, "ABC001（親）", key)
	assert.Equal(t, "parent", r.Get(Name("flag")))

	r, key, ok = ix.LookupWithParent("DEF002", DefaultParentMarker)
	require.True(t, ok)
	assert.Equal(t, "DEF002", key, "plain key takes precedence")
	assert.Equal(t, "plain", r.Get(Name("flag")))

	_, _, ok = ix.LookupWithParent("ABC001", "")
	assert.False(t, ok)

	var nilIndex *Index
	_, _, ok = nilIndex.LookupWithParent("ABC001", DefaultParentMarker)
	assert.False(t, ok)
}

func TestCheckHeaders(t *testing.T) {
	h := NewHeader([]string{"a", "b"})
	assert.NoError(t, CheckHeaders("x", h, []string{"a"}))

	err := CheckHeaders("x", h, []string{"a", "c", "d"})
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"c", "d"}, se.Missing)
	assert.Contains(t, err.Error(), "missing required columns: c, d")
}
