package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiffRange(t *testing.T) {
	cases := []struct {
		input   string
		base    string
		head    string
		wantErr bool
	}{
		{input: "main..feature", base: "main", head: "feature"},
		{input: "v1.0.0..v1.1.0", base: "v1.0.0", head: "v1.1.0"},
		{input: "main", base: "main", head: "HEAD"},
		{input: "..feature", wantErr: true},
		{input: "main..", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			base, head, err := parseDiffRange(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.base, base)
			assert.Equal(t, tc.head, head)
		})
	}
}
