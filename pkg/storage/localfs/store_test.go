// Copyright © 2018 One Concern

package localfs

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"sync"
	"testing"

	"github.com/oneconcern/gitlib/pkg/errors"
	"github.com/oneconcern/gitlib/pkg/storage"
	"github.com/oneconcern/gitlib/pkg/storage/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHas(t *testing.T) {
	for _, bs := range setupStores(t) {
		has, err := bs.Has(context.Background(), "sixteentons")
		require.NoError(t, err)
		require.True(t, has)

		has, err = bs.Has(context.Background(), "ab/seventeentons")
		require.NoError(t, err)
		require.True(t, has)

		has, err = bs.Has(context.Background(), "ab")
		require.NoError(t, err)
		require.False(t, has, "directories are not keys")

		has, err = bs.Has(context.Background(), "fifteentons")
		require.NoError(t, err)
		require.False(t, has)
	}
}

func TestGet(t *testing.T) {
	for _, bs := range setupStores(t) {
		b, err := storage.ReadAll(context.Background(), bs, "sixteentons")
		require.NoError(t, err)
		assert.Equal(t, "this is the text", string(b))

		b, err = storage.ReadAll(context.Background(), bs, "ab/seventeentons")
		require.NoError(t, err)
		assert.Equal(t, "this is the text for another thing", string(b))

		_, err = bs.Get(context.Background(), "fifteentons")
		require.Error(t, err)
		assert.True(t, errors.Is(err, status.ErrNotExists))
	}
}

func TestGetAttr(t *testing.T) {
	for _, bs := range setupStores(t) {
		attr, err := bs.GetAttr(context.Background(), "sixteentons")
		require.NoError(t, err)
		assert.EqualValues(t, len("this is the text"), attr.Size)

		_, err = bs.GetAttr(context.Background(), "ab")
		assert.True(t, errors.Is(err, status.ErrNotExists))
	}
}

func TestKeys(t *testing.T) {
	for _, bs := range setupStores(t) {
		keys, err := bs.Keys(context.Background())
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"sixteentons", "ab/seventeentons"}, keys)
	}
}

func TestDelete(t *testing.T) {
	for _, bs := range setupStores(t) {
		require.NoError(t, bs.Delete(context.Background(), "ab/seventeentons"))
		k, _ := bs.Keys(context.Background())
		assert.Len(t, k, 1)

		// deleting twice is not an error
		require.NoError(t, bs.Delete(context.Background(), "ab/seventeentons"))
	}
}

func TestClear(t *testing.T) {
	for _, bs := range setupStores(t) {
		require.NoError(t, bs.Clear(context.Background()))
		k, _ := bs.Keys(context.Background())
		require.Empty(t, k)
	}
}

func TestPut(t *testing.T) {
	for _, bs := range setupStores(t) {
		content := bytes.NewBufferString("here we go once again")
		err := bs.Put(context.Background(), "cd/eighteentons", content, storage.NoOverWrite)
		require.NoError(t, err)

		rdr, err := bs.Get(context.Background(), "cd/eighteentons")
		require.NoError(t, err)
		b, err := ioutil.ReadAll(rdr)
		require.NoError(t, err)
		require.NoError(t, rdr.Close())

		assert.Equal(t, "here we go once again", string(b))

		k, _ := bs.Keys(context.Background())
		assert.Len(t, k, 3)

		err = bs.Put(context.Background(), "cd/eighteentons", bytes.NewBufferString("again"), storage.NoOverWrite)
		require.Error(t, err)
		assert.True(t, errors.Is(err, status.ErrExists))

		require.NoError(t, bs.Put(context.Background(), "cd/eighteentons", bytes.NewBufferString("again"), storage.OverWrite))
		b, err = storage.ReadAll(context.Background(), bs, "cd/eighteentons")
		require.NoError(t, err)
		assert.Equal(t, "again", string(b))
	}
}

func TestPut_Cancelled(t *testing.T) {
	for _, bs := range setupStores(t) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := bs.Put(ctx, "cd/cancelled", bytes.NewBufferString("never"), storage.OverWrite)
		require.Error(t, err)

		has, err := bs.Has(context.Background(), "cd/cancelled")
		require.NoError(t, err)
		assert.False(t, has)
	}
}

func TestAtomic_StagingIsReserved(t *testing.T) {
	bs, err := NewAtomic(afero.NewMemMapFs())
	require.NoError(t, err)

	err = bs.Put(context.Background(), StagingDir+"/sneaky", bytes.NewBufferString("x"), storage.OverWrite)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrInvalidResource))

	_, err = bs.Has(context.Background(), "/"+StagingDir+"/sneaky")
	assert.True(t, errors.Is(err, status.ErrInvalidResource))

	require.NoError(t, bs.Clear(context.Background()))
	ok, err := afero.DirExists(bs.(*localFSAtomic).storeImpl.fs, StagingDir)
	require.NoError(t, err)
	assert.True(t, ok, "clear keeps the staging area")
}

func TestAtomic_ConcurrentPuts(t *testing.T) {
	fs := afero.NewBasePathFs(afero.NewOsFs(), t.TempDir())
	bs, err := NewAtomic(fs)
	require.NoError(t, err)
	assert.Contains(t, bs.String(), "localfs-atomic@")

	const writers = 16
	payload := bytes.Repeat([]byte("same content "), 4096)

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- bs.Put(context.Background(), "ef/object", bytes.NewReader(payload), storage.OverWrite)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	keys, err := bs.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ef/object"}, keys)

	b, err := storage.ReadAll(context.Background(), bs, "ef/object")
	require.NoError(t, err)
	assert.Equal(t, payload, b)

	staged, err := afero.ReadDir(fs, StagingDir)
	require.NoError(t, err)
	assert.Empty(t, staged, "staging area should be drained after all renames")
}

func setupStores(t testing.TB) []storage.Store {
	t.Helper()

	plain := New(fixtureFs(t))
	atomic, err := NewAtomic(fixtureFs(t))
	require.NoError(t, err)

	return []storage.Store{plain, atomic}
}

func fixtureFs(t testing.TB) afero.Fs {
	fs := afero.NewMemMapFs()
	fakeFile(t, fs, "sixteentons", "this is the text")
	require.NoError(t, fs.MkdirAll("ab", 0700))
	fakeFile(t, fs, "ab/seventeentons", "this is the text for another thing")
	return fs
}

func fakeFile(t testing.TB, fs afero.Fs, file, content string) {
	f, err := fs.Create(file)
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close(), fmt.Sprintf("closing %s", file))
}

func TestStorageAPIErrors(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "ab/record", []byte("content"), 0600))
	ro := afero.NewReadOnlyFs(mem)

	_, err := NewAtomic(ro)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrStorageAPI))

	bs := New(ro)
	err = bs.Put(context.Background(), "ab/other", bytes.NewBufferString("x"), storage.OverWrite)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrStorageAPI))

	err = bs.Delete(context.Background(), "ab/record")
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrStorageAPI))

	b, err := storage.ReadAll(context.Background(), bs, "ab/record")
	require.NoError(t, err, "reads are unaffected")
	assert.Equal(t, "content", string(b))
}
