// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.uber.org/zap"
)

// Instrument decorates a Store so that every call opens a tracing span and emits a debug log
func Instrument(tr opentracing.Tracer, l *zap.Logger, store Store) Store {
	if tr == nil {
		tr = opentracing.NoopTracer{}
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &instrumentedStore{
		tr:    tr,
		store: store,
		l:     l.With(zap.String("store", store.String())),
	}
}

type instrumentedStore struct {
	store Store
	tr    opentracing.Tracer
	l     *zap.Logger
}

func (i *instrumentedStore) opName(name string) string {
	return strings.Join([]string{"storage", name}, ".")
}

func (i *instrumentedStore) span(ctx context.Context, name, key string) opentracing.Span {
	var span opentracing.Span
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		span = i.tr.StartSpan(i.opName(name), opentracing.ChildOf(parent.Context()))
	} else {
		span = i.tr.StartSpan(i.opName(name))
	}
	if key != "" {
		span.SetTag("key", key)
	}
	return span
}

func finish(span opentracing.Span, err error) {
	if err != nil {
		ext.Error.Set(span, true)
		span.LogKV("error", err.Error())
	}
	span.Finish()
}

func (i *instrumentedStore) Has(ctx context.Context, key string) (has bool, err error) {
	span := i.span(ctx, "Has", key)
	defer func() { finish(span, err) }()
	i.l.Debug("storage has", zap.String("key", key))

	return i.store.Has(ctx, key)
}

func (i *instrumentedStore) Get(ctx context.Context, key string) (rdr io.ReadCloser, err error) {
	span := i.span(ctx, "Get", key)
	defer func() { finish(span, err) }()
	i.l.Debug("storage get", zap.String("key", key))

	return i.store.Get(ctx, key)
}

func (i *instrumentedStore) GetAttr(ctx context.Context, key string) (attr Attributes, err error) {
	span := i.span(ctx, "GetAttr", key)
	defer func() { finish(span, err) }()
	i.l.Debug("storage get attributes", zap.String("key", key))

	return i.store.GetAttr(ctx, key)
}

func (i *instrumentedStore) Put(ctx context.Context, key string, rdr io.Reader, opt PutOpt) (err error) {
	span := i.span(ctx, "Put", key)
	defer func() { finish(span, err) }()
	i.l.Debug("storage put", zap.String("key", key), zap.Bool("no_overwrite", bool(opt)))

	return i.store.Put(ctx, key, rdr, opt)
}

func (i *instrumentedStore) Delete(ctx context.Context, key string) (err error) {
	span := i.span(ctx, "Delete", key)
	defer func() { finish(span, err) }()
	i.l.Debug("storage delete", zap.String("key", key))

	return i.store.Delete(ctx, key)
}

func (i *instrumentedStore) Keys(ctx context.Context) (keys []string, err error) {
	span := i.span(ctx, "Keys", "")
	defer func() { finish(span, err) }()
	i.l.Debug("storage keys")

	return i.store.Keys(ctx)
}

func (i *instrumentedStore) Clear(ctx context.Context) (err error) {
	span := i.span(ctx, "Clear", "")
	defer func() { finish(span, err) }()
	i.l.Info("storage clear")

	return i.store.Clear(ctx)
}

func (i *instrumentedStore) String() string {
	return "instrumented-" + i.store.String()
}
