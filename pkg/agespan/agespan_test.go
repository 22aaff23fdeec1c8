package agespan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []int
	}{
		{"single age", "62", []int{62}},
		{"closed range", "62-65", []int{62, 63, 64, 65}},
		{"degenerate range", "70-70", []int{70}},
		{"list", "62,64,66", []int{62, 64, 66}},
		{"range plus single", "62-64,75", []int{62, 63, 64, 75}},
		{"whitespace tolerated", " 62 , 64 ", []int{62, 64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandOpenEnded(t *testing.T) {
	got, err := Expand("118-")
	require.NoError(t, err)
	assert.Equal(t, []int{118, 119, 120}, got)
}

func TestExpandErrors(t *testing.T) {
	for _, spec := range []string{"", "abc", "65-60", "-65", "62--65", "62-65-70"} {
		t.Run(spec, func(t *testing.T) {
			_, err := Expand(spec)
			assert.Error(t, err)
		})
	}
}
