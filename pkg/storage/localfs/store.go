// Copyright © 2018 One Concern

package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/oneconcern/gitlib/pkg/storage"
	"github.com/oneconcern/gitlib/pkg/storage/status"
	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// StagingDir is the name of the directory, at the root of an atomic store,
// where objects are written before being renamed into place.
const StagingDir = ".staging"

// New creates a new local file system backed storage model
func New(fs afero.Fs) storage.Store {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), filepath.Join(".gitlib", "objects"))
	}
	return &localFS{
		fs: fs,
	}
}

type localFS struct {
	fs afero.Fs
}

func (l *localFS) Has(ctx context.Context, key string) (bool, error) {
	fi, err := l.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, status.ErrStorageAPI.Wrap(err)
	}

	return !fi.IsDir(), nil
}

func (l *localFS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	has, err := l.Has(ctx, key)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, status.ErrNotExists.WrapMessage(key)
	}
	f, err := l.fs.Open(key)
	if err != nil {
		return nil, status.ErrStorageAPI.Wrap(err)
	}
	return f, nil
}

func (l *localFS) GetAttr(ctx context.Context, key string) (storage.Attributes, error) {
	fi, err := l.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return storage.Attributes{}, status.ErrNotExists.WrapMessage(key)
		}
		return storage.Attributes{}, status.ErrStorageAPI.Wrap(err)
	}
	if fi.IsDir() {
		return storage.Attributes{}, status.ErrNotExists.WrapMessage(key)
	}
	return storage.Attributes{
		Updated: fi.ModTime(),
		Size:    fi.Size(),
	}, nil
}

func (l *localFS) ensureDir(key string) error {
	dir := path.Dir(filepath.ToSlash(key))
	if dir == "." || dir == "/" {
		return nil
	}
	if err := l.fs.MkdirAll(dir, 0700); err != nil {
		return status.ErrStorageAPI.Wrap(fmt.Errorf("ensuring directories for %q: %w", key, err))
	}
	return nil
}

func (l *localFS) Put(ctx context.Context, key string, source io.Reader, opt storage.PutOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.ensureDir(key); err != nil {
		return err
	}

	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if opt == storage.NoOverWrite {
		flag |= os.O_EXCL
	}
	target, err := l.fs.OpenFile(key, flag, 0600)
	if err != nil {
		if os.IsExist(err) {
			return status.ErrExists.WrapMessage(key)
		}
		return status.ErrStorageAPI.Wrap(fmt.Errorf("create record for %q: %w", key, err))
	}

	if _, err = io.Copy(target, source); err != nil {
		_ = target.Close()
		return status.ErrStorageAPI.Wrap(fmt.Errorf("write record for %q: %w", key, err))
	}
	if err = target.Close(); err != nil {
		return status.ErrStorageAPI.Wrap(err)
	}
	return nil
}

func (l *localFS) Delete(ctx context.Context, key string) error {
	if err := l.fs.Remove(key); err != nil && !os.IsNotExist(err) {
		return status.ErrStorageAPI.Wrap(fmt.Errorf("removing %q: %w", key, err))
	}
	return nil
}

func (l *localFS) walk(skip func(string) bool) ([]string, error) {
	const root = "."
	var res []string
	e := afero.Walk(l.fs, root, func(pth string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if pth == root {
			return nil
		}
		key := strings.TrimPrefix(filepath.ToSlash(pth), "/")
		if skip(key) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		res = append(res, key)
		return nil
	})
	if e != nil {
		return nil, status.ErrStorageAPI.Wrap(e)
	}
	return res, nil
}

func (l *localFS) Keys(ctx context.Context) ([]string, error) {
	return l.walk(func(string) bool { return false })
}

func (l *localFS) Clear(ctx context.Context) error {
	return l.clear(func(string) bool { return false })
}

func (l *localFS) clear(keep func(string) bool) error {
	entries, err := afero.ReadDir(l.fs, ".")
	if err != nil {
		return status.ErrStorageAPI.Wrap(err)
	}
	var merr error
	for _, entry := range entries {
		if keep(entry.Name()) {
			continue
		}
		if err = l.fs.RemoveAll(entry.Name()); err != nil {
			merr = multierr.Append(merr, status.ErrStorageAPI.Wrap(err))
		}
	}
	return merr
}

func (l *localFS) String() string {
	return describe("localfs", l.fs)
}

func describe(kind string, fs afero.Fs) string {
	switch bfs := fs.(type) {
	case *afero.BasePathFs:
		pp, err := bfs.RealPath("")
		if err != nil {
			return kind
		}
		return kind + "@" + pp
	default:
		return kind
	}
}

/* thread-safe local storage implementation.
 * use a decorator pattern to implement atomic Put()s via atomicity of afero.Fs.Rename()
 * for those filesystems where Rename() is thread-safe:  files are written under a unique
 * name in a staging area, then Rename()d into place.
 */

func isStagingKey(key string) bool {
	components := strings.Split(strings.TrimLeft(filepath.ToSlash(key), "/"), "/")
	return len(components) > 0 && components[0] == StagingDir
}

func maybeInvalidKey(key string) error {
	if isStagingKey(key) {
		return status.ErrInvalidResource.WrapMessage(
			fmt.Sprintf("key %q conflicts with put staging area name %q", key, StagingDir),
		)
	}
	return nil
}

// NewAtomic creates a local file system store whose Put operations are atomic:
// readers never observe a partially written object.
func NewAtomic(fs afero.Fs) (storage.Store, error) {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), filepath.Join(".gitlib", "objects"))
	}
	/* the staging area exists within the afero.Fs itself */
	if err := fs.MkdirAll(StagingDir, 0700); err != nil {
		return nil, status.ErrStorageAPI.Wrap(fmt.Errorf("ensuring put staging directory for %q: %w", StagingDir, err))
	}
	return &localFSAtomic{
		storeImpl: localFS{fs: fs},
	}, nil
}

type localFSAtomic struct {
	storeImpl localFS
}

func (l *localFSAtomic) Has(ctx context.Context, key string) (bool, error) {
	if err := maybeInvalidKey(key); err != nil {
		return false, err
	}
	return l.storeImpl.Has(ctx, key)
}

func (l *localFSAtomic) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := maybeInvalidKey(key); err != nil {
		return nil, err
	}
	return l.storeImpl.Get(ctx, key)
}

func (l *localFSAtomic) GetAttr(ctx context.Context, key string) (storage.Attributes, error) {
	if err := maybeInvalidKey(key); err != nil {
		return storage.Attributes{}, err
	}
	return l.storeImpl.GetAttr(ctx, key)
}

func (l *localFSAtomic) Delete(ctx context.Context, key string) error {
	if err := maybeInvalidKey(key); err != nil {
		return err
	}
	return l.storeImpl.Delete(ctx, key)
}

func (l *localFSAtomic) Keys(ctx context.Context) ([]string, error) {
	return l.storeImpl.walk(isStagingKey)
}

func (l *localFSAtomic) Clear(ctx context.Context) error {
	return l.storeImpl.clear(func(name string) bool { return name == StagingDir })
}

// Put writes the content into a uniquely named staging file, then renames it to its final key.
//
// With NoOverWrite, the existence check happens before staging: concurrent writers
// of the same key may all succeed, the last rename winning.
func (l *localFSAtomic) Put(ctx context.Context, key string, source io.Reader, opt storage.PutOpt) (err error) {
	if err = maybeInvalidKey(key); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if opt == storage.NoOverWrite {
		has, herr := l.storeImpl.Has(ctx, key)
		if herr != nil {
			return herr
		}
		if has {
			return status.ErrExists.WrapMessage(key)
		}
	}

	fs := l.storeImpl.fs
	staged, err := afero.TempFile(fs, StagingDir, ksuid.New().String()+"-*")
	if err != nil {
		return status.ErrStorageAPI.Wrap(fmt.Errorf("create staging record for %q: %w", key, err))
	}
	stagedName := staged.Name()
	defer func() {
		if err != nil {
			err = multierr.Append(err, removeIfExists(fs, stagedName))
		}
	}()

	if _, err = io.Copy(staged, source); err != nil {
		_ = staged.Close()
		return status.ErrStorageAPI.Wrap(fmt.Errorf("write staging record for %q: %w", key, err))
	}
	if err = staged.Sync(); err != nil {
		_ = staged.Close()
		return status.ErrStorageAPI.Wrap(fmt.Errorf("sync staging record for %q: %w", key, err))
	}
	if err = staged.Close(); err != nil {
		return status.ErrStorageAPI.Wrap(err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	/* Rename() doesn't create directories automatically */
	if err = l.storeImpl.ensureDir(key); err != nil {
		return err
	}
	if err = fs.Rename(stagedName, key); err != nil {
		return status.ErrStorageAPI.Wrap(fmt.Errorf("moving staging record into place for %q: %w", key, err))
	}
	return nil
}

func removeIfExists(fs afero.Fs, name string) error {
	if err := fs.Remove(name); err != nil && !os.IsNotExist(err) {
		return status.ErrStorageAPI.Wrap(err)
	}
	return nil
}

func (l *localFSAtomic) String() string {
	return describe("localfs-atomic", l.storeImpl.fs)
}
