package session

import (
	"context"
	"sync"

	"github.com/aretw0/websession/pkg/domain"
)

// fakeService is a scriptable ports.SessionService.
type fakeService struct {
	mu          sync.Mutex
	data        domain.Snapshot
	getErr      error
	logoutErr   error
	getCalls    int
	logoutCalls int
}

func newFakeService(data domain.Snapshot) *fakeService {
	return &fakeService{data: data}
}

func (f *fakeService) Get(ctx context.Context) (domain.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.data.Clone(), nil
}

// Logout resets the server state to the anonymous snapshot.
func (f *fakeService) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.data = domain.Snapshot{}
	return nil
}

func (f *fakeService) set(data domain.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = data
}

func (f *fakeService) calls() (get, logout int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls, f.logoutCalls
}

// recorder collects change events.
type recorder struct {
	mu     sync.Mutex
	events []*domain.ChangeEvent
}

func (r *recorder) handle(ctx context.Context, e *domain.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) all() []*domain.ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.ChangeEvent(nil), r.events...)
}

func account(id string) domain.Snapshot {
	return domain.Snapshot{"account": map[string]any{"id": id}}
}
