package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-entityform/pkg/entity"
	"github.com/goliatone/go-entityform/pkg/store"
)

// Call records one invocation of a RecordingAPI method.
type Call struct {
	Method     string
	Collection string
	ID         string
	Payload    entity.Entity
}

// RecordingAPI wraps a store.API, recording calls and optionally failing or
// holding them.
type RecordingAPI struct {
	Inner store.API

	mu        sync.Mutex
	calls     []Call
	fetchErrs map[string]error
	entityErr error
	saveErr   error
	gates     map[string]chan struct{}
	entered   map[string]chan struct{}
}

var _ store.API = (*RecordingAPI)(nil)

// NewRecordingAPI wraps inner.
func NewRecordingAPI(inner store.API) *RecordingAPI {
	return &RecordingAPI{
		Inner:     inner,
		fetchErrs: make(map[string]error),
		gates:     make(map[string]chan struct{}),
		entered:   make(map[string]chan struct{}),
	}
}

// FailCollection makes FetchCollection for collection return err.
func (r *RecordingAPI) FailCollection(collection string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchErrs[collection] = err
}

// FailEntity makes FetchEntity return err.
func (r *RecordingAPI) FailEntity(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entityErr = err
}

// FailSave makes CreateEntity and UpdateEntity return err.
func (r *RecordingAPI) FailSave(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

// Hold blocks calls of method until the returned release function is called
// or the call's context is done. The entered channel is closed once the first
// held call arrives.
func (r *RecordingAPI) Hold(method string) (entered <-chan struct{}, release func()) {
	gate := make(chan struct{})
	in := make(chan struct{})
	r.mu.Lock()
	r.gates[method] = gate
	r.entered[method] = in
	r.mu.Unlock()

	var once sync.Once
	return in, func() { once.Do(func() { close(gate) }) }
}

// Calls returns the recorded calls, optionally filtered by method.
func (r *RecordingAPI) Calls(method string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, call := range r.calls {
		if method == "" || call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

func (r *RecordingAPI) record(ctx context.Context, call Call) error {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	gate := r.gates[call.Method]
	in := r.entered[call.Method]
	if in != nil {
		delete(r.entered, call.Method)
	}
	r.mu.Unlock()

	if in != nil {
		close(in)
	}
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchEntity implements store.API.
func (r *RecordingAPI) FetchEntity(ctx context.Context, collection, id string) (entity.Entity, error) {
	if err := r.record(ctx, Call{Method: "FetchEntity", Collection: collection, ID: id}); err != nil {
		return nil, err
	}
	r.mu.Lock()
	err := r.entityErr
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.Inner.FetchEntity(ctx, collection, id)
}

// CreateEntity implements store.API.
func (r *RecordingAPI) CreateEntity(ctx context.Context, collection string, e entity.Entity) (entity.Entity, error) {
	if err := r.record(ctx, Call{Method: "CreateEntity", Collection: collection, Payload: e.Clone()}); err != nil {
		return nil, err
	}
	if err := r.saveError(); err != nil {
		return nil, err
	}
	return r.Inner.CreateEntity(ctx, collection, e)
}

// UpdateEntity implements store.API.
func (r *RecordingAPI) UpdateEntity(ctx context.Context, collection string, e entity.Entity) (entity.Entity, error) {
	if err := r.record(ctx, Call{Method: "UpdateEntity", Collection: collection, ID: e.ID(), Payload: e.Clone()}); err != nil {
		return nil, err
	}
	if err := r.saveError(); err != nil {
		return nil, err
	}
	return r.Inner.UpdateEntity(ctx, collection, e)
}

// FetchCollection implements store.API.
func (r *RecordingAPI) FetchCollection(ctx context.Context, collection string, page store.PageParams) ([]entity.Entity, error) {
	if err := r.record(ctx, Call{Method: "FetchCollection", Collection: collection}); err != nil {
		return nil, err
	}
	r.mu.Lock()
	err := r.fetchErrs[collection]
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.Inner.FetchCollection(ctx, collection, page)
}

func (r *RecordingAPI) saveError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveErr
}

// RecordingNavigator collects navigation intents.
type RecordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

// Navigate implements formsync.Navigator.
func (n *RecordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

// Routes returns the recorded routes.
func (n *RecordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

// RecordingNotifier collects store notifications.
type RecordingNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

// Success implements store.Notifier.
func (n *RecordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

// Failure implements store.Notifier.
func (n *RecordingNotifier) Failure(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, msg)
}

// Successes returns the recorded success messages.
func (n *RecordingNotifier) Successes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.successes...)
}

// Failures returns the recorded failure messages.
func (n *RecordingNotifier) Failures() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.failures...)
}
