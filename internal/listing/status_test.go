package listing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     CheckFlag
	}{
		{"all published", []Status{Published, Published}, CheckOK},
		{"published and unregistered", []Status{Published, Unregistered}, NeedsReview},
		{"published and out of stock", []Status{Published, OutOfStock}, NeedsReview},
		{"only gray", []Status{OutOfStock, Closed}, CheckOK},
		{"single channel", []Status{Hidden}, CheckOK},
		{"not yet open counts as main", []Status{NotYetOpen, Published}, NeedsReview},
		{"none", nil, CheckOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(tt.statuses))
		})
	}
}

func TestStatusLabels(t *testing.T) {
	for _, st := range Statuses {
		parsed, ok := ParseStatus(st.Label())
		require.True(t, ok, st.Label())
		assert.Equal(t, st, parsed)
	}
	assert.Equal(t, "公開中", Published.String())
	assert.Equal(t, "要確認", NeedsReview.String())

	b, err := json.Marshal(map[string]Status{"rakuten": Warehouse})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rakuten":"倉庫"}`, string(b))

	var st Status
	assert.Error(t, st.UnmarshalText([]byte("unknown")))
}
