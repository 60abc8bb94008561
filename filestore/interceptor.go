package filestore

import (
	"context"
	"sync/atomic"
)

// Interceptor defines functions that are invoked around store operations.
type Interceptor[V any] struct {
	beforeStore  atomic.Pointer[func(string, V) error]
	afterStore   atomic.Pointer[func(string, V) error]
	beforeRemove atomic.Pointer[func(string) error]
	afterRemove  atomic.Pointer[func(string) error]
}

// BinaryInterceptor is an [Interceptor] for use with a [BinaryStore].
type BinaryInterceptor = Interceptor[[]byte]

// BeforeStore sets the function that is invoked before an entry is stored.
func (i *Interceptor[V]) BeforeStore(fn func(k string, v V) error) {
	setEntryFn(&i.beforeStore, fn)
}

// AfterStore sets the function that is invoked after an entry is stored.
func (i *Interceptor[V]) AfterStore(fn func(k string, v V) error) {
	setEntryFn(&i.afterStore, fn)
}

// BeforeRemove sets the function that is invoked before an entry is removed.
func (i *Interceptor[V]) BeforeRemove(fn func(k string) error) {
	setKeyFn(&i.beforeRemove, fn)
}

// AfterRemove sets the function that is invoked after an entry is removed.
func (i *Interceptor[V]) AfterRemove(fn func(k string) error) {
	setKeyFn(&i.afterRemove, fn)
}

// WithInterceptor returns a [Store] that invokes the functions defined by
// the given [Interceptor] when performing operations on s.
func WithInterceptor[V any](s Store[V], in *Interceptor[V]) Store[V] {
	if in == nil {
		return s
	}

	return &interceptedStore[V]{
		Next:        s,
		Interceptor: in,
	}
}

func setEntryFn[V any](dst *atomic.Pointer[func(string, V) error], fn func(string, V) error) {
	if fn == nil {
		dst.Store(nil)
		return
	}

	dst.Store(&fn)
}

func setKeyFn(dst *atomic.Pointer[func(string) error], fn func(string) error) {
	if fn == nil {
		dst.Store(nil)
		return
	}

	dst.Store(&fn)
}

type interceptedStore[V any] struct {
	Next        Store[V]
	Interceptor *Interceptor[V]
}

func (s *interceptedStore[V]) List(ctx context.Context) ([]string, error) {
	return s.Next.List(ctx)
}

func (s *interceptedStore[V]) Load(ctx context.Context, k string) (V, error) {
	return s.Next.Load(ctx, k)
}

func (s *interceptedStore[V]) Store(ctx context.Context, k string, v V) error {
	if fn := s.Interceptor.beforeStoreFn(); fn != nil {
		if err := fn(k, v); err != nil {
			return err
		}
	}

	if err := s.Next.Store(ctx, k, v); err != nil {
		return err
	}

	if fn := s.Interceptor.afterStoreFn(); fn != nil {
		if err := fn(k, v); err != nil {
			return err
		}
	}

	return nil
}

func (s *interceptedStore[V]) LoadAll(ctx context.Context) ([]Entry[V], error) {
	return s.Next.LoadAll(ctx)
}

// StoreAll invokes the interceptor functions once per entry.
func (s *interceptedStore[V]) StoreAll(ctx context.Context, entries []Entry[V]) error {
	for _, e := range entries {
		if err := s.Store(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}

	return nil
}

func (s *interceptedStore[V]) Remove(ctx context.Context, k string) error {
	if fn := s.Interceptor.beforeRemoveFn(); fn != nil {
		if err := fn(k); err != nil {
			return err
		}
	}

	if err := s.Next.Remove(ctx, k); err != nil {
		return err
	}

	if fn := s.Interceptor.afterRemoveFn(); fn != nil {
		if err := fn(k); err != nil {
			return err
		}
	}

	return nil
}

func (i *Interceptor[V]) beforeStoreFn() func(string, V) error {
	if i == nil {
		return nil
	}

	if fn := i.beforeStore.Load(); fn != nil {
		return *fn
	}

	return nil
}

func (i *Interceptor[V]) afterStoreFn() func(string, V) error {
	if i == nil {
		return nil
	}

	if fn := i.afterStore.Load(); fn != nil {
		return *fn
	}

	return nil
}

func (i *Interceptor[V]) beforeRemoveFn() func(string) error {
	if i == nil {
		return nil
	}

	if fn := i.beforeRemove.Load(); fn != nil {
		return *fn
	}

	return nil
}

func (i *Interceptor[V]) afterRemoveFn() func(string) error {
	if i == nil {
		return nil
	}

	if fn := i.afterRemove.Load(); fn != nil {
		return *fn
	}

	return nil
}
