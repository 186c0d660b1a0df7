// SPDX-License-Identifier: EPL-2.0

package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	base := E(MissingInput, "mosaic", fs.ErrNotExist)
	wrapped := fmt.Errorf("load transect: %w", base)

	assert.Equal(t, MissingInput, KindOf(base))
	assert.Equal(t, MissingInput, KindOf(wrapped))
	assert.True(t, Is(wrapped, MissingInput))
	assert.False(t, Is(wrapped, IO))
	assert.True(t, errors.Is(wrapped, fs.ErrNotExist))
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
	assert.False(t, Is(nil, Unknown))
}

func TestWithSite(t *testing.T) {
	t.Parallel()

	err := WithSite("BR_AC_10", E(Configuration, "grid", errors.New("cell smaller than pixel")))
	require.Error(t, err)
	assert.Equal(t, "BR_AC_10: grid: configuration: cell smaller than pixel", err.Error())

	plain := WithSite("BR_AC_10", errors.New("boom"))
	assert.Equal(t, Unknown, KindOf(plain))
	assert.Nil(t, WithSite("x", nil))
}

func TestKind_TextRoundTrip(t *testing.T) {
	t.Parallel()

	for k := Unknown; k <= Configuration; k++ {
		b, err := json.Marshal(k)
		require.NoError(t, err)

		var got Kind
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, k, got)
	}

	var bad Kind
	assert.Error(t, bad.UnmarshalText([]byte("nope")))
}
