package listing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBase  Channel = "test_base"
	testOther Channel = "test_other"
)

type stockFacts struct {
	found bool
	stock string
}

func stockClassifier(ch Channel) Classifier {
	return Chain(
		func(code string, c *Context) stockFacts {
			r, ok := c.Record(ch, code)
			return stockFacts{found: ok, stock: r.Get(Name("stock"))}
		},
		[]Rule[stockFacts]{
			{Name: "missing", When: func(f stockFacts, _ string) bool { return !f.found }, Then: Unregistered},
			{Name: "zero", When: func(f stockFacts, _ string) bool { return IsZero(f.stock) }, Then: OutOfStock},
		},
	)
}

func init() {
	Register(Definition{
		Channel:    testBase,
		Label:      "base",
		Order:      101,
		Key:        KeySpec{Field: Name("code")},
		NameField:  Name("name"),
		Classifier: stockClassifier(testBase),
	})
	Register(Definition{
		Channel:    testOther,
		Label:      "other",
		Order:      102,
		Key:        KeySpec{Field: Name("code")},
		Classifier: stockClassifier(testOther),
	})
}

type periodicCodes map[string]bool

func (p periodicCodes) Contains(code string) bool { return p[code] }

type vendorNames map[string]string

func (v vendorNames) VendorName(code string) string { return v[code] }

func testContext() *Context {
	h := NewHeader([]string{"code", "name", "stock"})
	c := NewContext("20240101")
	base, _ := Lookup(testBase)
	other, _ := Lookup(testOther)
	c.Load(base, NewRecords(h, [][]string{
		{"12abcd001", "りんご", "5"},
		{"12ABCD001", "duplicate", "0"},
		{"xyz002", "みかん", "0"},
		{"", "no key", "1"},
	}))
	c.Load(other, NewRecords(h, [][]string{
		{"12abcd001", "", "3"},
	}))
	return c
}

func TestAggregate(t *testing.T) {
	rows, err := Aggregate(context.Background(), AggregateInput{
		Base:     testBase,
		Channels: []Channel{testOther, testBase},
		Context:  testContext(),
		Periodic: periodicCodes{"XYZ002": true},
		Vendors:  vendorNames{"12ABCD": "青森農園"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "12ABCD001", first.Code)
	assert.Equal(t, "りんご", first.Name)
	assert.Equal(t, "12ABCD", first.VendorCode)
	assert.Equal(t, "青森農園", first.VendorName)
	assert.Equal(t, []Channel{testBase, testOther}, first.Channels, "channels follow portal order")
	assert.Equal(t, Published, first.Status(testBase))
	assert.Equal(t, Published, first.Status(testOther))
	assert.Equal(t, CheckOK, first.Check)
	assert.Equal(t, 2, first.Published)
	assert.False(t, first.Periodic)

	second := rows[1]
	assert.Equal(t, "XYZ002", second.Code)
	assert.Equal(t, "XYZ", second.VendorCode)
	assert.Equal(t, OutOfStock, second.Status(testBase))
	assert.Equal(t, Unregistered, second.Status(testOther))
	assert.Equal(t, NeedsReview, second.Check)
	assert.Equal(t, 0, second.Published)
	assert.True(t, second.Periodic)
}

func TestAggregateMissingBase(t *testing.T) {
	_, err := Aggregate(context.Background(), AggregateInput{Base: "nope", Context: testContext()})
	assert.ErrorIs(t, err, ErrBaseChannelMissing)

	_, err = Aggregate(context.Background(), AggregateInput{Base: testBase})
	assert.ErrorIs(t, err, ErrBaseChannelMissing)
}

func TestAggregateUnknownChannelIsUnimplemented(t *testing.T) {
	rows, err := Aggregate(context.Background(), AggregateInput{
		Base:     testBase,
		Channels: []Channel{testBase, "not_registered"},
		Context:  testContext(),
	})
	require.NoError(t, err)
	assert.Equal(t, Unimplemented, rows[0].Status("not_registered"))
}

func TestAggregateWorkersKeepOrder(t *testing.T) {
	h := NewHeader([]string{"code", "name", "stock"})
	var cells [][]string
	for i := range 500 {
		cells = append(cells, []string{fmt.Sprintf("ABC%04d", i), "", fmt.Sprint(i % 3)})
	}
	c := NewContext("20240101")
	base, _ := Lookup(testBase)
	c.Load(base, NewRecords(h, cells))

	in := AggregateInput{Base: testBase, Channels: []Channel{testBase}, Context: c}
	serial, err := Aggregate(context.Background(), in)
	require.NoError(t, err)

	in.Workers = 8
	parallel, err := Aggregate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)
}

func TestAggregateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Aggregate(ctx, AggregateInput{Base: testBase, Channels: []Channel{testBase}, Context: testContext()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() { Register(Definition{Channel: testBase}) })
}
