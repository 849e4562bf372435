package observe

import (
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// ObjectObservationAdapter supplies observers for values the locator cannot
// intercept. Adapters are consulted in registration order before falling
// back to dirty checking.
type ObjectObservationAdapter interface {
	GetObserver(obj any, propertyName string) (PropertyObserver, bool)
}

// LocatorOption configures an ObserverLocator.
type LocatorOption func(*ObserverLocator)

// WithFrameRequester sets the frame source that drives dirty checking.
func WithFrameRequester(frames FrameRequester) LocatorOption {
	return func(l *ObserverLocator) {
		l.frames = frames
	}
}

// WithDirtyCheckDelay sets the interval between dirty-check passes.
func WithDirtyCheckDelay(d time.Duration) LocatorOption {
	return func(l *ObserverLocator) {
		l.dirtyCheckDelay = d
	}
}

// WithSnapshotPool sets the pool shared by every observer the locator
// creates.
func WithSnapshotPool(pool *SnapshotPool) LocatorOption {
	return func(l *ObserverLocator) {
		l.pool = pool
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LocatorOption {
	return func(l *ObserverLocator) {
		l.logger = logger
	}
}

type dirtyKey struct {
	ptr  uintptr
	typ  reflect.Type
	name string
}

// ObserverLocator returns the single shared observer for a given property,
// creating and caching it on first request.
type ObserverLocator struct {
	taskQueue       TaskQueue
	frames          FrameRequester
	dirtyCheckDelay time.Duration
	dirtyChecker    *DirtyChecker
	pool            *SnapshotPool
	logger          *slog.Logger

	mu       sync.Mutex
	adapters []ObjectObservationAdapter
	dirty    map[dirtyKey]*DirtyCheckProperty
}

// NewObserverLocator creates a locator that queues notifications on
// taskQueue.
func NewObserverLocator(taskQueue TaskQueue, opts ...LocatorOption) *ObserverLocator {
	l := &ObserverLocator{
		taskQueue: taskQueue,
		pool:      NewSnapshotPool(),
		logger:    slog.Default(),
		dirty:     make(map[dirtyKey]*DirtyCheckProperty),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.frames == nil {
		if fr, ok := taskQueue.(FrameRequester); ok {
			l.frames = fr
		}
	}
	l.dirtyChecker = NewDirtyChecker(l.frames, l.dirtyCheckDelay)
	return l
}

// TaskQueue returns the queue observers notify through.
func (l *ObserverLocator) TaskQueue() TaskQueue {
	return l.taskQueue
}

// DirtyChecker returns the checker polling non-interceptable properties.
func (l *ObserverLocator) DirtyChecker() *DirtyChecker {
	return l.dirtyChecker
}

// SnapshotPool returns the pool shared by the locator's observers.
func (l *ObserverLocator) SnapshotPool() *SnapshotPool {
	return l.pool
}

// AddAdapter registers an observation adapter.
func (l *ObserverLocator) AddAdapter(adapter ObjectObservationAdapter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.adapters = append(l.adapters, adapter)
}

// GetObserver returns the observer for obj[propertyName].
func (l *ObserverLocator) GetObserver(obj any, propertyName string) PropertyObserver {
	if o, ok := obj.(*Object); ok && o != nil {
		if existing, ok := o.observer(propertyName); ok {
			return existing
		}
		obs := l.createObjectObserver(o, propertyName)
		if nc, ok := obs.(uncachedObserver); !ok || !nc.doNotCache() {
			o.setObserver(propertyName, obs)
		}
		return obs
	}
	return l.createObserver(obj, propertyName)
}

func (l *ObserverLocator) createObjectObserver(obj *Object, propertyName string) PropertyObserver {
	acc, intercepted := obj.accessor(propertyName)
	if !intercepted {
		obs := NewSetterObserver(l.taskQueue, obj, propertyName)
		obs.SetSnapshotPool(l.pool)
		return obs
	}
	if computed, ok := acc.(*computedProperty); ok && len(computed.dependencies) > 0 {
		obs := newComputedObserver(l, obj, propertyName, computed)
		obs.SetSnapshotPool(l.pool)
		return obs
	}
	if obs, ok := l.adapterObserver(obj, propertyName); ok {
		return obs
	}
	return l.dirtyProperty(obj, propertyName)
}

func (l *ObserverLocator) createObserver(obj any, propertyName string) PropertyObserver {
	switch o := obj.(type) {
	case *Array:
		if propertyName == "length" {
			return l.GetArrayObserver(o).LengthObserver()
		}
	case *Map:
		if propertyName == "size" {
			return l.GetMapObserver(o).LengthObserver()
		}
	case *Set:
		if propertyName == "size" {
			return l.GetSetObserver(o).LengthObserver()
		}
	}
	if !IsObject(obj) {
		return NewPrimitiveObserver(obj, propertyName)
	}
	if obs, ok := l.adapterObserver(obj, propertyName); ok {
		return obs
	}
	rv := reflect.ValueOf(obj)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice:
		return l.dirtyProperty(obj, propertyName)
	}
	// plain struct values are copies and can never change
	return NewPrimitiveObserver(obj, propertyName)
}

func (l *ObserverLocator) adapterObserver(obj any, propertyName string) (PropertyObserver, bool) {
	l.mu.Lock()
	adapters := l.adapters
	l.mu.Unlock()
	for _, a := range adapters {
		if obs, ok := a.GetObserver(obj, propertyName); ok {
			return obs, true
		}
	}
	return nil, false
}

func (l *ObserverLocator) dirtyProperty(obj any, propertyName string) PropertyObserver {
	key := dirtyKey{ptr: reflect.ValueOf(obj).Pointer(), typ: reflect.TypeOf(obj), name: propertyName}

	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.dirty[key]; ok {
		return p
	}
	p := NewDirtyCheckProperty(l.dirtyChecker, obj, propertyName)
	p.SetSnapshotPool(l.pool)
	p.onIdle = func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.dirty[key] == p {
			delete(l.dirty, key)
		}
	}
	l.dirty[key] = p
	l.logger.Debug("dirty checking property",
		slog.String("type", key.typ.String()),
		slog.String("property", propertyName),
	)
	return p
}

// GetArrayObserver returns the collection observer attached to arr.
func (l *ObserverLocator) GetArrayObserver(arr *Array) *CollectionObserver {
	l.mu.Lock()
	defer l.mu.Unlock()
	if arr.observer == nil {
		arr.observer = l.newCollectionObserver(arr, KindArray)
	}
	return arr.observer
}

// GetMapObserver returns the collection observer attached to m.
func (l *ObserverLocator) GetMapObserver(m *Map) *CollectionObserver {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m.observer == nil {
		m.observer = l.newCollectionObserver(m, KindMap)
	}
	return m.observer
}

// GetSetObserver returns the collection observer attached to s.
func (l *ObserverLocator) GetSetObserver(s *Set) *CollectionObserver {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s.observer == nil {
		s.observer = l.newCollectionObserver(s, KindSet)
	}
	return s.observer
}

// GetCollectionObserver returns the observer for any observable collection.
func (l *ObserverLocator) GetCollectionObserver(collection any) (*CollectionObserver, bool) {
	switch c := collection.(type) {
	case *Array:
		return l.GetArrayObserver(c), true
	case *Map:
		return l.GetMapObserver(c), true
	case *Set:
		return l.GetSetObserver(c), true
	}
	return nil, false
}

func (l *ObserverLocator) newCollectionObserver(c sizedCollection, kind CollectionKind) *CollectionObserver {
	obs := newCollectionObserver(l.taskQueue, c, kind)
	obs.SetSnapshotPool(l.pool)
	return obs
}
