package cafs

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "911bc2b07dd96c21ef3ab8b56ffeca4e0b8d1b74ea7667dd67eb2d037c1b4880d3b2533035d90f84ceb326ca9f0c47bb75e0ed3e86c959ab8d687b1739677278"

func TestKey_FailsOnIncorrectSize(t *testing.T) {
	data1 := make([]byte, 63)
	data2 := make([]byte, 65)
	data3 := make([]byte, 64)

	for _, data := range [][]byte{data1, data2, data3} {
		_, err := rand.Read(data)
		require.NoError(t, err)
	}

	_, err := NewKey(data1)
	require.Error(t, err)
	var bad *BadKeySize
	require.ErrorAs(t, err, &bad)

	_, err = NewKey(data2)
	require.Error(t, err)

	k, err := NewKey(data3)
	require.NoError(t, err)
	assert.Len(t, k, 64)

	assert.Panics(t, func() { MustNewKey(data1) })
	assert.NotPanics(t, func() { MustNewKey(data3) })
}

func TestKey_Succeeds(t *testing.T) {
	data, err := hex.DecodeString(testKey)
	require.NoError(t, err)

	key, err := NewKey(data)
	require.NoError(t, err)
	assert.Equal(t, testKey, key.String())
	assert.False(t, key.IsZero())
	assert.True(t, Key{}.IsZero())

	parsed, err := KeyFromString(strings.ToUpper(testKey))
	require.NoError(t, err)
	assert.Equal(t, key, parsed)
}

func TestKey_Path(t *testing.T) {
	key, err := KeyFromString(testKey)
	require.NoError(t, err)

	pth := key.Path()
	assert.Equal(t, "91/"+testKey[2:], pth)

	back, err := KeyFromPath(pth)
	require.NoError(t, err)
	assert.Equal(t, key, back)

	_, err = KeyFromPath(testKey)
	require.Error(t, err)
	_, err = KeyFromPath(".staging/" + testKey[9:])
	require.Error(t, err)
	_, err = KeyFromPath(strings.ToUpper(pth))
	require.Error(t, err, "object paths are lower case")
}

func TestKeyFromString_Invalid(t *testing.T) {
	_, err := KeyFromString("abcd")
	require.Error(t, err)

	_, err = KeyFromString(strings.Repeat("zz", KeySize))
	require.Error(t, err)
}
