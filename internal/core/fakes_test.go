package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/moredip/session-share/pkg/models"
)

// fakeRemoteStore is an in-memory RemoteStore. Created objects get
// sequential IDs and are listed in creation order.
type fakeRemoteStore struct {
	mu        sync.Mutex
	objects   []*RemoteObject
	next      int
	createErr error
	updateErr error
	listErr   error
	getErr    map[string]error
	creates   int
	updates   []string
}

func newFakeRemoteStore() *fakeRemoteStore {
	return &fakeRemoteStore{getErr: map[string]error{}}
}

func (f *fakeRemoteStore) Create(_ context.Context, files []string, description string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return "", f.createErr
	}
	f.next++
	obj := &RemoteObject{
		ID:          fmt.Sprintf("b%011d", f.next),
		Description: description,
		Files:       map[string]string{},
	}
	for _, p := range files {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		obj.Files[filepath.Base(p)] = string(data)
	}
	f.objects = append(f.objects, obj)
	return "https://gist.example.com/someone/" + obj.ID + "\n", nil
}

func (f *fakeRemoteStore) UpdateDescription(_ context.Context, id, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id)
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, obj := range f.objects {
		if obj.ID == id {
			obj.Description = description
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeRemoteStore) List(_ context.Context) ([]RemoteObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]RemoteObject, 0, len(f.objects))
	for _, obj := range f.objects {
		names := map[string]string{}
		for name := range obj.Files {
			names[name] = ""
		}
		out = append(out, RemoteObject{ID: obj.ID, Description: obj.Description, Files: names})
	}
	return out, nil
}

func (f *fakeRemoteStore) Get(_ context.Context, id string) (*RemoteObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	for _, obj := range f.objects {
		if obj.ID == id {
			cp := *obj
			return &cp, nil
		}
	}
	return nil, &models.RemoteError{Op: models.OpGet, Err: models.ErrNotFound}
}

// storeFetcher writes a fake store's objects into a directory.
type storeFetcher struct {
	store *fakeRemoteStore
	dir   string
}

func (s *storeFetcher) Fetch(ctx context.Context, bundleID string) (map[string]string, error) {
	obj, err := s.store.Get(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	dest := filepath.Join(s.dir, bundleID)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, err
	}
	out := map[string]string{}
	for name, content := range obj.Files {
		p := filepath.Join(dest, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return nil, err
		}
		out[name] = p
	}
	return out, nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingEvents) LogEvent(eventType string, _ map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
	return nil
}

func (r *recordingEvents) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == eventType {
			n++
		}
	}
	return n
}

type memLedger struct {
	records []models.PublishRecord
}

func (m *memLedger) Digest(files []string) (string, error) {
	d := ""
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return "", err
		}
		d += filepath.Base(f) + ":" + string(data) + ";"
	}
	return d, nil
}

func (m *memLedger) Record(rec models.PublishRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memLedger) FindByDigest(digest string) ([]models.PublishRecord, error) {
	var out []models.PublishRecord
	for _, r := range m.records {
		if r.Digest == digest {
			out = append(out, r)
		}
	}
	return out, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
