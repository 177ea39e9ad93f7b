package layout

import (
	"testing"

	"github.com/oneconcern/gitlib/pkg/cafs"
	gerrors "github.com/oneconcern/gitlib/pkg/errors"
	"github.com/oneconcern/gitlib/pkg/layout/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Marshal(t *testing.T) {
	c := Config{
		ObjectFormat:  cafs.SchemeBlake3,
		Compression:   cafs.CompressionNone,
		DefaultBranch: "trunk",
	}
	data, err := c.Marshal()
	require.NoError(t, err)

	parsed, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
}

func TestParseConfig(t *testing.T) {
	parsed, err := ParseConfig([]byte("[core]\nrepositoryformatversion = 0\n"))
	require.NoError(t, err)
	assert.Equal(t, Config{
		ObjectFormat:  cafs.DefaultScheme,
		Compression:   cafs.DefaultCompression,
		DefaultBranch: DefaultBranchName,
	}, parsed, "missing settings take their default value")

	for _, invalid := range []string{
		"",
		"[init]\ndefaultbranch = main\n",
		"[core]\nbare = false\n",
		"[core]\nrepositoryformatversion = 1\n",
		"[core]\nrepositoryformatversion = zero\n",
		"[core]\nrepositoryformatversion = 0\nobjectformat = sha1\n",
		"[core]\nrepositoryformatversion = 0\ncompression = lz4\n",
		"[core\n",
	} {
		_, err = ParseConfig([]byte(invalid))
		assert.Truef(t, gerrors.Is(err, status.ErrInvalidLayout), "expected %q to be rejected", invalid)
	}
}
