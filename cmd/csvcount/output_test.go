package main

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/csvcount/pkg/count"
)

func TestFormatResult(t *testing.T) {
	res := count.Result{Count: 1234567, Width: 12345, Strategy: count.StrategyStream}

	tests := []struct {
		name string
		out  outputFlags
		want string
	}{
		{name: "plain", out: outputFlags{}, want: "1234567"},
		{name: "human", out: outputFlags{human: true}, want: "1,234,567"},
		{name: "width", out: outputFlags{width: true}, want: "1234567;12345"},
		{name: "human width", out: outputFlags{width: true, human: true}, want: "1,234,567;12,345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatResult(res, tt.out))
		})
	}
}

func TestWriteResultJSON(t *testing.T) {
	var buf bytes.Buffer
	res := count.Result{Count: 3, Width: 9, Strategy: count.StrategyAccelerated}

	require.NoError(t, writeResult(&buf, res, outputFlags{json: true}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, float64(3), doc["count"])
	assert.Equal(t, "accelerated", doc["strategy"])
	assert.NotContains(t, doc, "width")
}
