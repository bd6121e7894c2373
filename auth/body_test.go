package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBody(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{
			name: "single field",
			in:   map[string]string{"hash": "0x123"},
			want: `{"hash": "0x123"}`,
		},
		{
			name: "struct with several fields",
			in: struct {
				Order string `json:"order"`
				Owner string `json:"owner"`
			}{Order: "abc", Owner: "def"},
			want: `{"order": "abc", "owner": "def"}`,
		},
		{
			name: "array of strings",
			in:   []string{"a", "b"},
			want: `["a", "b"]`,
		},
		{
			name: "nested",
			in: map[string]any{
				"ids": []int{1, 2, 3},
			},
			want: `{"ids": [1, 2, 3]}`,
		},
		{
			name: "separators inside string literals stay compact",
			in:   map[string]string{"note": `a,b:c "quoted, too"`},
			want: `{"note": "a,b:c \"quoted, too\""}`,
		},
		{
			name: "no html escaping",
			in:   map[string]string{"q": "a<b&c>d"},
			want: `{"q": "a<b&c>d"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatBody(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatBodyStable(t *testing.T) {
	in := map[string]any{"b": 2, "a": 1, "c": []string{"x", "y"}}
	first, err := FormatBody(in)
	require.NoError(t, err)
	second, err := FormatBody(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
