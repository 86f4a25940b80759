package options

import (
	"testing"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConflictStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want ConflictStrategy
	}{
		{"skip", ConflictSkip},
		{"Rename", ConflictRename},
		{" OVERWRITE ", ConflictOverwrite},
		{"", ConflictRename},
	}
	for _, tt := range tests {
		got, err := ParseConflictStrategy(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseConflictStrategy("prompt")
	assert.ErrorIs(t, err, common.ErrUnknownConflictMode)
}

func TestParseOrganizeStrategy(t *testing.T) {
	got, err := ParseOrganizeStrategy("DATE")
	require.NoError(t, err)
	assert.Equal(t, OrganizeByDate, got)

	got, err = ParseOrganizeStrategy("")
	require.NoError(t, err)
	assert.Equal(t, OrganizeByType, got)

	_, err = ParseOrganizeStrategy("color")
	assert.ErrorIs(t, err, common.ErrUnknownStrategy)
}
