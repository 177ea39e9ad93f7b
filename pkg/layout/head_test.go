package layout

import (
	"strings"
	"testing"

	"github.com/oneconcern/gitlib/pkg/cafs"
	gerrors "github.com/oneconcern/gitlib/pkg/errors"
	"github.com/oneconcern/gitlib/pkg/layout/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHead(t *testing.T) {
	h, err := ParseHead([]byte("ref: refs/heads/main\n"))
	require.NoError(t, err)
	assert.False(t, h.Detached())
	assert.Equal(t, "main", h.Branch())
	assert.Equal(t, "ref: refs/heads/main\n", string(h.Marshal()))

	key, err := cafs.Hash(cafs.DefaultScheme, cafs.KindCommit, []byte("tree"))
	require.NoError(t, err)
	h, err = ParseHead([]byte(key.String() + "\n"))
	require.NoError(t, err)
	assert.True(t, h.Detached())
	assert.Equal(t, key, h.Key)
	assert.Equal(t, key.String(), h.String())

	for _, invalid := range []string{
		"",
		"ref: \n",
		"ref: main\n",
		"ref: refs/heads/a..b\n",
		"ref: refs/heads/main\nref: refs/heads/other\n",
		"deadbeef\n",
		strings.Repeat("z", cafs.KeySizeHex) + "\n",
	} {
		_, err = ParseHead([]byte(invalid))
		assert.Truef(t, gerrors.Is(err, status.ErrInvalidLayout), "expected %q to be rejected", invalid)
	}
}

func TestHeadFor(t *testing.T) {
	key, err := cafs.Hash(cafs.DefaultScheme, cafs.KindCommit, []byte("tree"))
	require.NoError(t, err)

	for target, expected := range map[string]Head{
		"main":               {Ref: "refs/heads/main"},
		"feature/x":          {Ref: "refs/heads/feature/x"},
		"refs/tags/v1.0.0":   {Ref: "refs/tags/v1.0.0"},
		"refs/heads/release": {Ref: "refs/heads/release"},
		key.String():         {Key: key},
	} {
		h, err := headFor(target)
		require.NoError(t, err, target)
		assert.Equal(t, expected, h)
	}

	for _, target := range []string{"", "refs/remotes/origin/main", "a:b", "x.lock", ".hidden", "a/./b"} {
		_, err := headFor(target)
		assert.Truef(t, gerrors.Is(err, status.ErrInvalidOption), "expected %q to be rejected", target)
	}
}

func TestRepository_SetHead(t *testing.T) {
	_, repo := initMem(t)

	require.NoError(t, repo.SetHead("refs/tags/v1"))
	h, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, "refs/tags/v1", h.Ref)

	key, err := cafs.Hash(cafs.DefaultScheme, cafs.KindCommit, []byte("tree"))
	require.NoError(t, err)
	require.NoError(t, repo.SetHead(key.String()))
	h, err = repo.Head()
	require.NoError(t, err)
	assert.True(t, h.Detached())
	assert.Equal(t, key, h.Key)

	require.Error(t, repo.SetHead("bad name"))
	h, err = repo.Head()
	require.NoError(t, err)
	assert.Equal(t, key, h.Key, "a rejected update leaves HEAD untouched")
}
