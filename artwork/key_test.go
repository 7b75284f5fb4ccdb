package artwork

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFor(t *testing.T) {
	assert.True(t, KeyFor(Work, "").IsZero())
	assert.True(t, KeyFor(Series, "  \t").IsZero())

	k := KeyFor(Work, " 4029759108419 ")
	assert.False(t, k.IsZero())
	assert.Equal(t, "4029759108419", k.ID)
	assert.Equal(t, "work:4029759108419", k.String())

	assert.NotEqual(t, KeyFor(Work, "42"), KeyFor(Series, "42"))
	assert.NotEqual(t, KeyFor(Work, "42").String(), KeyFor(Series, "42").String())
	assert.NotEqual(t, KeyFor(Work, "42").FileName(), KeyFor(Series, "42").FileName())
}

func TestKeyFileName(t *testing.T) {
	tests := []struct {
		key    Key
		want   string
		hashed bool
	}{
		{key: KeyFor(Work, "4029759108419"), want: "work-4029759108419.jpg"},
		{key: KeyFor(Series, "abc_DEF-1.2"), want: "series-abc_DEF-1.2.jpg"},
		{key: KeyFor(Work, "../etc/passwd"), hashed: true},
		{key: KeyFor(Work, ".hidden"), hashed: true},
		{key: KeyFor(Series, "Die drei ???"), hashed: true},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			name := tt.key.FileName()
			assert.Equal(t, name, tt.key.FileName(), "file name must be deterministic")
			assert.NotContains(t, name, "/")
			if tt.hashed {
				assert.True(t, strings.HasPrefix(name, tt.key.Class.String()+"~"), name)
				assert.True(t, strings.HasSuffix(name, ".jpg"), name)
				_, ok := keyFromFileName(name)
				assert.False(t, ok)
				return
			}
			assert.Equal(t, tt.want, name)
			back, ok := keyFromFileName(name)
			require.True(t, ok)
			assert.Equal(t, tt.key, back)
		})
	}
}

func TestKeyFromFileNameRejectsForeignFiles(t *testing.T) {
	for _, name := range []string{"notes.txt", "album-1.png", "work.jpg", "Work-1.jpg", ".tmp-ab-work-1.jpg"} {
		_, ok := keyFromFileName(name)
		assert.False(t, ok, name)
	}
}

func TestParseEntityClass(t *testing.T) {
	for in, want := range map[string]EntityClass{
		"work":    Work,
		"Album":   Work,
		"series":  Series,
		" artist": Series,
	} {
		got, err := ParseEntityClass(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseEntityClass("episode")
	assert.Error(t, err)
	assert.Equal(t, "unknown", EntityClass(0).String())
}
