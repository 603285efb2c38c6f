package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCost(t *testing.T) {
	toPtr := func(v int64) *int64 { return &v }

	tests := []struct {
		name     string
		tokens   *int64
		price    float64
		expected float64
	}{
		{name: "nil tokens", tokens: nil, price: 0.03, expected: 0.0},
		{name: "zero tokens", tokens: toPtr(0), price: 0.03, expected: 0.0},
		{name: "1000 tokens at 0.03", tokens: toPtr(1000), price: 0.03, expected: 0.03},
		{name: "500 tokens at 0.03", tokens: toPtr(500), price: 0.03, expected: 0.015},
		{name: "fractional result", tokens: toPtr(1234), price: 0.03, expected: 0.03702},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Cost(tt.tokens, tt.price), 1e-9)
		})
	}
}
