package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageOffset(t *testing.T) {
	tests := []struct {
		name string
		page Page
		want int
	}{
		{"first page", Page{Number: 1, Size: 10}, 0},
		{"third page", Page{Number: 3, Size: 10}, 20},
		{"zero number", Page{Number: 0, Size: 10}, 0},
		{"zero size", Page{Number: 5, Size: 0}, 0},
		{"largest exact", Page{Number: math.MaxInt/10 + 1, Size: 10}, math.MaxInt / 10 * 10},
		{"overflowing number", Page{Number: 1844674407370955162, Size: 10}, math.MaxInt},
		{"max int number", Page{Number: math.MaxInt, Size: 100}, math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.page.Offset())
		})
	}
}
