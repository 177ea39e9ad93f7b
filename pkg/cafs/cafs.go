// Copyright © 2018 One Concern

package cafs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"time"

	"github.com/docker/go-units"
	"github.com/oneconcern/gitlib/pkg/cafs/status"
	gerrors "github.com/oneconcern/gitlib/pkg/errors"
	"github.com/oneconcern/gitlib/pkg/storage"
	storagestatus "github.com/oneconcern/gitlib/pkg/storage/status"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultMaxObjectSize is the largest payload held in memory by Put and Get
const DefaultMaxObjectSize = 512 * units.MiB

// PutRes holds the result from a Put operation
type PutRes struct {
	Key     Key   // the key of the written object
	Written int64 // payload bytes
	Found   bool  // the object was already stored: nothing has been written
}

// Object is a stored payload with its kind
type Object struct {
	Key  Key
	Kind Kind
	Data []byte
}

// Info describes a stored object without its payload
type Info struct {
	Key        Key
	Kind       Kind
	Size       int64 // payload size
	StoredSize int64 // size on the backend, after compression
	Updated    time.Time
}

// Fs implementations provide content-addressable object store operations
type Fs interface {
	Put(context.Context, Kind, io.Reader) (PutRes, error)
	PutBytes(context.Context, Kind, []byte) (PutRes, error)
	Get(context.Context, Key) (Object, error)
	Contains(context.Context, Key) (bool, error)
	Stat(context.Context, Key) (Info, error)
	Delete(context.Context, Key) error
	Keys(context.Context) ([]Key, error)
	Verify(context.Context) ([]Key, error)
	Scheme() Scheme
	Compression() Compression
}

var _ Fs = &defaultFs{}

func defaultsForFs() *defaultFs {
	return &defaultFs{
		scheme:           DefaultScheme,
		compression:      DefaultCompression,
		maxObjectSize:    DefaultMaxObjectSize,
		l:                zap.NewNop(),
		withVerifyHash:   true,  // verify read objects against their key
		withVerifyWrites: false, // read back all written objects
	}
}

// New creates a new instance of a content-addressable object store
func New(opts ...Option) (Fs, error) {
	f := defaultsForFs()
	for _, apply := range opts {
		apply(f)
	}

	if f.backend == nil {
		return nil, errors.New("cafs requires a backend store")
	}
	if _, err := ParseScheme(string(f.scheme)); err != nil {
		return nil, err
	}
	if _, err := ParseCompression(string(f.compression)); err != nil {
		return nil, err
	}

	f.l = f.l.With(zap.String("scheme", f.scheme.String()), zap.String("backend", f.backend.String()))
	return f, nil
}

type defaultFs struct {
	backend storage.Store
	l       *zap.Logger

	// options
	scheme           Scheme
	compression      Compression
	maxObjectSize    int64
	withVerifyHash   bool
	withVerifyWrites bool
}

func (d *defaultFs) Scheme() Scheme {
	return d.scheme
}

func (d *defaultFs) Compression() Compression {
	return d.compression
}

func (d *defaultFs) Put(ctx context.Context, kind Kind, src io.Reader) (PutRes, error) {
	payload, err := ioutil.ReadAll(io.LimitReader(src, d.maxObjectSize+1))
	if err != nil {
		return PutRes{}, err
	}
	if int64(len(payload)) > d.maxObjectSize {
		return PutRes{}, status.ErrObjectTooBig.WrapMessage(
			fmt.Sprintf("exceeds %s", units.BytesSize(float64(d.maxObjectSize))),
		)
	}
	return d.PutBytes(ctx, kind, payload)
}

// PutBytes stores a payload. The key is computed before anything is written.
func (d *defaultFs) PutBytes(ctx context.Context, kind Kind, payload []byte) (PutRes, error) {
	d.l.Debug("Start cafs Put")
	defer d.l.Debug("End cafs Put")

	if int64(len(payload)) > d.maxObjectSize {
		return PutRes{}, status.ErrObjectTooBig.WrapMessage(
			fmt.Sprintf("exceeds %s", units.BytesSize(float64(d.maxObjectSize))),
		)
	}

	key, err := Hash(d.scheme, kind, payload)
	if err != nil {
		return PutRes{}, err
	}
	lg := d.l.With(zap.Stringer("key", key), zap.Stringer("kind", kind))

	if err = ctx.Err(); err != nil {
		return PutRes{}, err
	}

	found, err := d.backend.Has(ctx, key.Path())
	if err != nil {
		return PutRes{}, err
	}
	if found {
		lg.Debug("cafs object already stored")
		return PutRes{Key: key, Written: int64(len(payload)), Found: true}, nil
	}

	stored, err := encode(d.compression, kind, payload)
	if err != nil {
		return PutRes{}, err
	}

	// a concurrent writer may rename the same content into place: both outcomes are identical
	if err = d.backend.Put(ctx, key.Path(), bytes.NewReader(stored), storage.OverWrite); err != nil {
		return PutRes{}, err
	}
	lg.Debug("cafs object written", zap.Int("stored_size", len(stored)), zap.Int("size", len(payload)))

	if err = d.verifyFlushed(ctx, key); err != nil {
		return PutRes{}, err
	}

	return PutRes{Key: key, Written: int64(len(payload))}, nil
}

func (d *defaultFs) verifyFlushed(ctx context.Context, key Key) error {
	if !d.withVerifyWrites {
		return nil
	}

	if _, err := d.get(ctx, key, true); err != nil {
		d.l.Error("cafs verification of written object failed", zap.Stringer("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (d *defaultFs) Get(ctx context.Context, key Key) (Object, error) {
	d.l.Debug("Start cafs Get")
	defer d.l.Debug("End cafs Get")

	return d.get(ctx, key, d.withVerifyHash)
}

func (d *defaultFs) get(ctx context.Context, key Key, verify bool) (Object, error) {
	stored, err := storage.ReadAll(ctx, d.backend, key.Path())
	if err != nil {
		return Object{}, notFound(key, err)
	}

	kind, payload, err := decode(stored, d.maxObjectSize)
	if err != nil {
		d.l.Warn("cafs could not decode object", zap.Stringer("key", key), zap.Error(err))
		return Object{}, fmt.Errorf("object %v: %w", key, err)
	}

	if verify {
		check, err := Hash(d.scheme, kind, payload)
		if err != nil {
			return Object{}, err
		}
		if check != key {
			d.l.Warn("cafs object content doesn't match its key",
				zap.Stringer("key", key),
				zap.Stringer("computed", check),
			)
			return Object{}, status.ErrCorruptObject.WrapMessage(
				fmt.Sprintf("object %v hashes to %v", key, check),
			)
		}
	}

	return Object{Key: key, Kind: kind, Data: payload}, nil
}

func notFound(key Key, err error) error {
	if gerrors.Is(err, storagestatus.ErrNotExists) {
		return status.ErrNotFound.WrapMessage(key.String())
	}
	return err
}

func (d *defaultFs) Contains(ctx context.Context, key Key) (bool, error) {
	return d.backend.Has(ctx, key.Path())
}

// Stat reads the object header only
func (d *defaultFs) Stat(ctx context.Context, key Key) (info Info, err error) {
	attr, err := d.backend.GetAttr(ctx, key.Path())
	if err != nil {
		return Info{}, notFound(key, err)
	}

	rdr, err := d.backend.Get(ctx, key.Path())
	if err != nil {
		return Info{}, notFound(key, err)
	}
	defer func() {
		err = multierr.Append(err, rdr.Close())
	}()

	br, release, err := openFrame(rdr)
	if err != nil {
		return Info{}, err
	}
	defer release()

	kind, size, err := readHeader(br)
	if err != nil {
		return Info{}, fmt.Errorf("object %v: %w", key, err)
	}

	return Info{
		Key:        key,
		Kind:       kind,
		Size:       size,
		StoredSize: attr.Size,
		Updated:    attr.Updated,
	}, nil
}

func (d *defaultFs) Delete(ctx context.Context, key Key) error {
	d.l.Debug("cafs delete", zap.Stringer("key", key))
	return d.backend.Delete(ctx, key.Path())
}

// Keys returns all the object keys from the backend store.
//
// Backend entries which are not object paths are ignored.
func (d *defaultFs) Keys(ctx context.Context) ([]Key, error) {
	v, err := d.backend.Keys(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Key, 0, len(v))
	for _, k := range v {
		kk, err := KeyFromPath(k)
		if err != nil {
			d.l.Debug("cafs skipping foreign entry", zap.String("path", k))
			continue
		}
		result = append(result, kk)
	}
	return result, nil
}

// Verify re-hashes every stored object and returns the keys of corrupt ones
func (d *defaultFs) Verify(ctx context.Context) ([]Key, error) {
	keys, err := d.Keys(ctx)
	if err != nil {
		return nil, err
	}

	var corrupt []Key
	for _, key := range keys {
		if err = ctx.Err(); err != nil {
			return corrupt, err
		}
		_, err = d.get(ctx, key, true)
		switch {
		case err == nil:
		case gerrors.Is(err, status.ErrCorruptObject):
			corrupt = append(corrupt, key)
		case gerrors.Is(err, status.ErrObjectTooBig):
			d.l.Warn("cafs object too big to be verified", zap.Stringer("key", key))
		case gerrors.Is(err, status.ErrNotFound):
			// deleted since listed
		default:
			return corrupt, err
		}
	}
	d.l.Info("cafs verification complete", zap.Int("objects", len(keys)), zap.Int("corrupt", len(corrupt)))
	return corrupt, nil
}
