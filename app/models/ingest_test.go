package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/app/models"
)

func TestIngestMessage_DecodesNumbersAndStrings(t *testing.T) {
	cases := map[string]string{
		"numbers": `{"id":"p1","name":"Lamp","description":"d","price":10.99,"count":5}`,
		"strings": `{"id":"p1","name":"Lamp","description":"d","price":"10.99","count":"5"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var m models.IngestMessage
			require.NoError(t, json.Unmarshal([]byte(body), &m))

			p, err := m.Product()
			require.NoError(t, err)
			assert.Equal(t, models.Product{ID: "p1", Name: "Lamp", Description: "d", Price: 10.99}, p)

			s, err := m.Stock()
			require.NoError(t, err)
			assert.Equal(t, models.Stock{ProductID: "p1", Count: 5}, s)
		})
	}
}

func TestIngestMessage_RejectsNonNumericPrice(t *testing.T) {
	var m models.IngestMessage
	err := json.Unmarshal([]byte(`{"id":"p1","name":"Lamp","price":"cheap"}`), &m)
	assert.Error(t, err)
}

func TestIngestMessage_MissingNumbersDefaultToZero(t *testing.T) {
	var m models.IngestMessage
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","name":"Lamp"}`), &m))

	p, err := m.Product()
	require.NoError(t, err)
	assert.Zero(t, p.Price)

	s, err := m.Stock()
	require.NoError(t, err)
	assert.Zero(t, s.Count)
}

func TestIngestMessage_EncodesNumbers(t *testing.T) {
	out, err := json.Marshal(models.IngestMessage{ID: "p1", Name: "Lamp", Price: "10.99", Count: "5"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","name":"Lamp","description":"","price":10.99,"count":5}`, string(out))
}

func TestIngestMessage_StockCountMustBeWholeAndInRange(t *testing.T) {
	tests := []struct {
		body    string
		want    int
		wantErr bool
	}{
		{`{"id":"p1","count":7}`, 7, false},
		{`{"id":"p1","count":"5.0"}`, 5, false},
		{`{"id":"p1","count":2147483647}`, 2147483647, false},
		{`{"id":"p1","count":1e20}`, 0, true},
		{`{"id":"p1","count":"-1e20"}`, 0, true},
		{`{"id":"p1","count":2147483648}`, 0, true},
		{`{"id":"p1","count":2.5}`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var m models.IngestMessage
			require.NoError(t, json.Unmarshal([]byte(tt.body), &m))

			s, err := m.Stock()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Count)
		})
	}
}

func TestIngestMessage_PriceMustBeFinite(t *testing.T) {
	var m models.IngestMessage
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","name":"Lamp","price":"NaN"}`), &m))

	_, err := m.Product()
	assert.Error(t, err)
}
