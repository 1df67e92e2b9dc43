package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// PreferenceKey is the key the chosen language is persisted under.
const PreferenceKey = "preferred-language"

// PreferenceStore persists small per-visitor settings. Load returns an empty
// string and no error when nothing is stored under key.
type PreferenceStore interface {
	Load(key string) (string, error)
	Save(key, value string) error
}

// MemoryPreferences keeps preferences for the lifetime of the process.
type MemoryPreferences struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryPreferences creates an empty in-memory store.
func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{values: make(map[string]string)}
}

func (p *MemoryPreferences) Load(key string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values[key], nil
}

func (p *MemoryPreferences) Save(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return nil
}

// FilePreferences stores preferences as a JSON object in a file, so the CLI
// remembers the last language between runs.
type FilePreferences struct {
	path string
	mu   sync.Mutex
}

// NewFilePreferences creates a store backed by path. The file is created on
// first Save.
func NewFilePreferences(path string) *FilePreferences {
	return &FilePreferences{path: path}
}

// DefaultPreferencesPath returns the per-user preferences file location.
func DefaultPreferencesPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "medtravel", "preferences.json")
}

func (p *FilePreferences) Load(key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	values, err := p.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (p *FilePreferences) Save(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	values, err := p.read()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("creating preferences dir: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o600); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}

func (p *FilePreferences) read() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading preferences: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decoding preferences: %w", err)
	}
	return values, nil
}

// RedisPreferences stores preferences in Redis under a per-visitor prefix.
type RedisPreferences struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisPreferences creates a store whose keys are
// "medtravel:pref:" + visitor + ":" + key. A zero ttl keeps keys forever.
func NewRedisPreferences(client *redis.Client, visitor string, ttl time.Duration) *RedisPreferences {
	return &RedisPreferences{
		client:  client,
		prefix:  "medtravel:pref:" + visitor + ":",
		ttl:     ttl,
		timeout: 2 * time.Second,
	}
}

func (p *RedisPreferences) Load(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	val, err := p.client.Get(ctx, p.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading preference %s: %w", key, err)
	}
	return val, nil
}

func (p *RedisPreferences) Save(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.client.Set(ctx, p.prefix+key, value, p.ttl).Err(); err != nil {
		return fmt.Errorf("saving preference %s: %w", key, err)
	}
	return nil
}

var (
	_ PreferenceStore = (*MemoryPreferences)(nil)
	_ PreferenceStore = (*FilePreferences)(nil)
	_ PreferenceStore = (*RedisPreferences)(nil)
)
