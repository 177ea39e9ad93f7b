// Copyright © 2018 One Concern

package layout

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/oneconcern/gitlib/pkg/cafs"
	"github.com/oneconcern/gitlib/pkg/layout/status"
	"github.com/oneconcern/gitlib/pkg/storage"
	"github.com/oneconcern/gitlib/pkg/storage/localfs"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Names of the entries in the repository layout
const (
	MetaDirName     = ".gitlib"
	HeadFile        = "HEAD"
	ConfigFile      = "config"
	DescriptionFile = "description"
	ObjectsDir      = "objects"
	RefsDir         = "refs"
	HeadsDir        = "refs/heads"
	TagsDir         = "refs/tags"

	// DefaultBranchName is the branch HEAD refers to in a new repository
	DefaultBranchName = "main"

	initStagingPrefix  = MetaDirName + "-init-"
	defaultDescription = "Unnamed repository; edit this file 'description' to name the repository."

	dirPerm  = 0755
	filePerm = 0644
)

var requiredDirs = []string{ObjectsDir, RefsDir, HeadsDir, TagsDir}

var requiredFiles = []string{HeadFile, ConfigFile}

// Repository is an initialized repository layout
type Repository struct {
	fs      afero.Fs
	path    string
	metaDir string
	config  Config
	l       *zap.Logger
	tracer  opentracing.Tracer
}

// Path to the working area of the repository
func (r *Repository) Path() string {
	return r.path
}

// MetaDir is the path to the metadata directory
func (r *Repository) MetaDir() string {
	return r.metaDir
}

// Config returns the settings read when the repository was opened
func (r *Repository) Config() Config {
	return r.config
}

// Description returns the content of the description file
func (r *Repository) Description() (string, error) {
	data, err := afero.ReadFile(r.fs, r.join(DescriptionFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", status.ErrIO.Wrap(err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Head reads the HEAD file
func (r *Repository) Head() (Head, error) {
	data, err := afero.ReadFile(r.fs, r.join(HeadFile))
	if err != nil {
		return Head{}, status.ErrIO.Wrap(err)
	}
	return ParseHead(data)
}

// SetHead points HEAD at a branch, a full reference or an object key.
//
// The new content is written to a temporary file then renamed over HEAD.
func (r *Repository) SetHead(target string) error {
	h, err := headFor(target)
	if err != nil {
		return err
	}
	if err = writeFileAtomic(r.fs, r.join(HeadFile), h.Marshal()); err != nil {
		return err
	}
	r.l.Debug("HEAD updated", zap.Stringer("head", h))
	return nil
}

// Objects opens the object store of the repository
func (r *Repository) Objects(opts ...cafs.Option) (cafs.Fs, error) {
	blobs, err := localfs.NewAtomic(afero.NewBasePathFs(r.fs, r.join(ObjectsDir)))
	if err != nil {
		return nil, status.ErrIO.Wrap(err)
	}
	if r.tracer != nil {
		blobs = storage.Instrument(r.tracer, r.l, blobs)
	}

	return cafs.New(append([]cafs.Option{
		cafs.Backend(blobs),
		cafs.WithScheme(r.config.ObjectFormat),
		cafs.WithCompression(r.config.Compression),
		cafs.Logger(r.l),
	}, opts...)...)
}

func (r *Repository) join(name string) string {
	return filepath.Join(r.metaDir, filepath.FromSlash(name))
}

// Init creates the repository layout under pth, creating pth if needed.
//
// Init fails with ErrAlreadyInitialized when a valid layout is already present, unless the Reinit option is set,
// and with ErrInvalidLayout when a malformed metadata directory is in the way.
// An empty metadata directory is replaced.
func Init(ctx context.Context, pth string, opts ...Option) (*Repository, error) {
	o := applyOptions(opts)
	if err := o.check(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pth = filepath.Clean(pth)
	metaDir := filepath.Join(pth, MetaDirName)
	lg := o.l.With(zap.String("path", pth))

	if err := o.fs.MkdirAll(pth, dirPerm); err != nil {
		return nil, status.ErrIO.Wrap(err)
	}

	found, err := probe(o.fs, metaDir)
	if err != nil {
		return nil, err
	}
	if found {
		return existing(pth, o)
	}
	// an empty metadata directory is replaced. If it got filled in the meantime, the rename below fails.
	_ = o.fs.Remove(metaDir)

	staging := filepath.Join(pth, initStagingPrefix+ksuid.New().String())
	if err = stageSkeleton(o.fs, staging, o); err != nil {
		return nil, rollback(o.fs, staging, err)
	}
	if err = ctx.Err(); err != nil {
		return nil, rollback(o.fs, staging, err)
	}

	if err = o.fs.Rename(staging, metaDir); err != nil {
		err = rollback(o.fs, staging, status.ErrIO.Wrap(err))

		// lost a race against a concurrent Init
		if present, perr := probe(o.fs, metaDir); perr == nil && present {
			lg.Debug("concurrent initialization detected")
			return existing(pth, o)
		}
		return nil, err
	}

	lg.Info("initialized repository",
		zap.String("object_format", o.objectFormat.String()),
		zap.String("branch", o.defaultBranch),
	)
	return open(pth, o)
}

// Open an existing repository at pth
func Open(ctx context.Context, pth string, opts ...Option) (*Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	pth = filepath.Clean(pth)

	found, err := probe(o.fs, filepath.Join(pth, MetaDirName))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, status.ErrNotRepository.WrapMessage(pth)
	}
	return open(pth, o)
}

// Validate checks that metaDir holds a complete, well-formed repository layout
func Validate(fs afero.Fs, metaDir string) error {
	_, err := validate(fs, metaDir)
	return err
}

func validate(fs afero.Fs, metaDir string) (Config, error) {
	fi, err := fs.Stat(metaDir)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, status.ErrNotRepository.WrapMessage(metaDir)
		}
		return Config{}, status.ErrIO.Wrap(err)
	}
	if !fi.IsDir() {
		return Config{}, status.ErrInvalidLayout.WrapMessage(metaDir + " is not a directory")
	}

	for _, dir := range requiredDirs {
		if err = checkEntry(fs, filepath.Join(metaDir, filepath.FromSlash(dir)), true); err != nil {
			return Config{}, err
		}
	}
	for _, file := range requiredFiles {
		if err = checkEntry(fs, filepath.Join(metaDir, file), false); err != nil {
			return Config{}, err
		}
	}

	data, err := afero.ReadFile(fs, filepath.Join(metaDir, HeadFile))
	if err != nil {
		return Config{}, status.ErrIO.Wrap(err)
	}
	if _, err = ParseHead(data); err != nil {
		return Config{}, err
	}

	data, err = afero.ReadFile(fs, filepath.Join(metaDir, ConfigFile))
	if err != nil {
		return Config{}, status.ErrIO.Wrap(err)
	}
	return ParseConfig(data)
}

func checkEntry(fs afero.Fs, pth string, isDir bool) error {
	fi, err := fs.Stat(pth)
	if err != nil {
		if os.IsNotExist(err) {
			return status.ErrInvalidLayout.WrapMessage("missing " + filepath.Base(pth))
		}
		return status.ErrIO.Wrap(err)
	}
	if fi.IsDir() != isDir {
		return status.ErrInvalidLayout.WrapMessage("unexpected entry type for " + filepath.Base(pth))
	}
	return nil
}

func open(pth string, o *options) (*Repository, error) {
	metaDir := filepath.Join(pth, MetaDirName)
	cfg, err := validate(o.fs, metaDir)
	if err != nil {
		return nil, err
	}
	return &Repository{
		fs:      o.fs,
		path:    pth,
		metaDir: metaDir,
		config:  cfg,
		l:       o.l.With(zap.String("repo", pth)),
		tracer:  o.tracer,
	}, nil
}

// existing handles an Init call finding a metadata directory in place
func existing(pth string, o *options) (*Repository, error) {
	repo, err := open(pth, o)
	if err != nil {
		return nil, err
	}
	if !o.reinit {
		return nil, status.ErrAlreadyInitialized.WrapMessage(pth)
	}
	o.l.Info("reinitialized existing repository", zap.String("path", pth))
	return repo, nil
}

// probe reports whether a non-empty metadata directory (or any other entry) is present
func probe(fs afero.Fs, metaDir string) (bool, error) {
	fi, err := fs.Stat(metaDir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, status.ErrIO.Wrap(err)
	}
	if !fi.IsDir() {
		return true, nil
	}

	empty, err := afero.IsEmpty(fs, metaDir)
	if err != nil {
		return false, status.ErrIO.Wrap(err)
	}
	return !empty, nil
}

func stageSkeleton(fs afero.Fs, staging string, o *options) error {
	if err := fs.Mkdir(staging, dirPerm); err != nil {
		return status.ErrIO.Wrap(err)
	}

	dirs := append([]string{}, requiredDirs...)
	dirs = append(dirs, filepath.Join(ObjectsDir, localfs.StagingDir))
	for _, dir := range dirs {
		if err := fs.MkdirAll(filepath.Join(staging, filepath.FromSlash(dir)), dirPerm); err != nil {
			return status.ErrIO.Wrap(err)
		}
	}

	cfg, err := newConfig(o).Marshal()
	if err != nil {
		return status.ErrIO.Wrap(err)
	}

	files := []struct {
		name    string
		content []byte
	}{
		{name: HeadFile, content: Head{Ref: headsPrefix + o.defaultBranch}.Marshal()},
		{name: ConfigFile, content: cfg},
		{name: DescriptionFile, content: []byte(o.description + "\n")},
	}
	for _, file := range files {
		if err = afero.WriteFile(fs, filepath.Join(staging, file.name), file.content, filePerm); err != nil {
			return status.ErrIO.Wrap(err)
		}
	}
	return nil
}

func rollback(fs afero.Fs, staging string, err error) error {
	if rerr := fs.RemoveAll(staging); rerr != nil {
		return multierr.Append(err, status.ErrIO.Wrap(rerr))
	}
	return err
}

func writeFileAtomic(fs afero.Fs, pth string, content []byte) (err error) {
	tmp, err := afero.TempFile(fs, filepath.Dir(pth), filepath.Base(pth)+".*.tmp")
	if err != nil {
		return status.ErrIO.Wrap(err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		_ = tmp.Close()
		return status.ErrIO.Wrap(err)
	}
	if err = tmp.Close(); err != nil {
		return status.ErrIO.Wrap(err)
	}
	if err = fs.Rename(tmpName, pth); err != nil {
		return status.ErrIO.Wrap(err)
	}
	return nil
}

func (o *options) check() error {
	if err := checkBranchName(o.defaultBranch); err != nil {
		return err
	}
	if _, err := cafs.ParseScheme(o.objectFormat.String()); err != nil {
		return status.ErrInvalidOption.Wrap(err)
	}
	if _, err := cafs.ParseCompression(o.compression.String()); err != nil {
		return status.ErrInvalidOption.Wrap(err)
	}
	if strings.ContainsAny(o.description, "\r\n") {
		return status.ErrInvalidOption.WrapMessage("description must fit on one line")
	}
	return nil
}
