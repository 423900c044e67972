package storage

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/moredip/session-share/pkg/models"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// PublishStoreManager is the local ledger of published bundles under
// published/index.yaml.
type PublishStoreManager interface {
	// Digest returns a BLAKE3 digest over the base names and contents of
	// files, in the given order.
	Digest(files []string) (string, error)
	// Record appends rec to the ledger.
	Record(rec models.PublishRecord) error
	FindByDigest(digest string) ([]models.PublishRecord, error)
	// List returns every record, oldest first. With unlabeledOnly it
	// returns only bundles whose relabel step failed.
	List(unlabeledOnly bool) ([]models.PublishRecord, error)
}

type filePublishStore struct {
	basePath string
}

// NewPublishStoreManager creates a PublishStoreManager backed by a YAML file
// under published/ in the given base directory.
func NewPublishStoreManager(basePath string) PublishStoreManager {
	return &filePublishStore{basePath: basePath}
}

func (s *filePublishStore) publishedDir() string {
	return filepath.Join(s.basePath, "published")
}

func (s *filePublishStore) indexPath() string {
	return filepath.Join(s.publishedDir(), "index.yaml")
}

func (s *filePublishStore) lockPath() string {
	return filepath.Join(s.publishedDir(), ".lock")
}

func (s *filePublishStore) Digest(files []string) (string, error) {
	h := blake3.New()
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("digesting %s: %w", path, err)
		}
		// Length-prefix the name so "ab"+"c" and "a"+"bc" differ.
		name := filepath.Base(path)
		fmt.Fprintf(h, "%d:%s\n", len(name), name)
		info, err := f.Stat()
		if err == nil {
			fmt.Fprintf(h, "%d\n", info.Size())
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("digesting %s: %w", path, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// lock acquires an exclusive lock on the ledger directory.
func (s *filePublishStore) lock() (unlock func() error, err error) {
	if err := os.MkdirAll(s.publishedDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating published directory: %w", err)
	}
	f, err := os.OpenFile(s.lockPath(), os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening ledger lock file: %w", err)
	}

	// syscall.Flock is Unix-specific.
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("acquiring ledger lock: %w", err)
	}

	return func() error {
		defer f.Close()
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}

func (s *filePublishStore) Record(rec models.PublishRecord) error {
	unlock, err := s.lock()
	if err != nil {
		return fmt.Errorf("recording publish: %w", err)
	}
	defer func() { _ = unlock() }()

	ledger, err := s.load()
	if err != nil {
		return fmt.Errorf("recording publish: %w", err)
	}
	ledger.Records = append(ledger.Records, rec)
	if err := saveYAML(s.indexPath(), ledger); err != nil {
		return fmt.Errorf("recording publish: writing ledger: %w", err)
	}
	return nil
}

func (s *filePublishStore) FindByDigest(digest string) ([]models.PublishRecord, error) {
	if digest == "" {
		return nil, nil
	}
	ledger, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []models.PublishRecord
	for _, r := range ledger.Records {
		if r.Digest == digest {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *filePublishStore) List(unlabeledOnly bool) ([]models.PublishRecord, error) {
	ledger, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.PublishRecord, 0, len(ledger.Records))
	for _, r := range ledger.Records {
		if unlabeledOnly && r.Labeled {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.Before(out[j].PublishedAt)
	})
	return out, nil
}

func (s *filePublishStore) load() (*models.PublishLedger, error) {
	ledger := &models.PublishLedger{Version: "1.0"}
	if err := loadYAML(s.indexPath(), ledger); err != nil {
		return nil, fmt.Errorf("loading publish ledger: %w", err)
	}
	return ledger, nil
}

// loadYAML decodes path into target. A missing file leaves target unchanged.
func loadYAML(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, target)
}

// saveYAML writes source to path through a temporary file so readers never
// see a partial ledger.
func saveYAML(path string, source interface{}) error {
	data, err := yaml.Marshal(source)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
