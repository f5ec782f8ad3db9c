package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/foomo/vacuumpartshub/service/vo"
	"github.com/patrickmn/go-cache"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const dataFileExt = ".json"

// DefaultExclude lists the brand aggregate files that live next to the model files.
var DefaultExclude = []string{"vacuums.json", "sharks.json", "bissells.json"}

// ErrNotFound is returned for unknown or invalid model and problem ids.
var ErrNotFound = errors.New("not found")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is safe to use as a model or problem id.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// MalformedDataError names a data file that could not be decoded or violates
// the record invariants.
type MalformedDataError struct {
	Path string
	Err  error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("malformed model data in %s: %v", e.Path, e.Err)
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}

type ResolverSettings struct {
	DataDir string
	// Exclude holds file names (e.g. "vacuums.json") that are not model records.
	Exclude []string
	// CacheTTL enables memoization of decoded records; zero disables it.
	CacheTTL time.Duration
}

// Resolver reads model records from a directory of <slug>.json files.
// It is safe for concurrent use.
type Resolver struct {
	logger   *zap.Logger
	settings ResolverSettings
	exclude  map[string]struct{}
	cache    *cache.Cache
}

func NewResolver(logger *zap.Logger, settings ResolverSettings) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	exclude := make(map[string]struct{}, len(settings.Exclude))
	for _, name := range settings.Exclude {
		exclude[name] = struct{}{}
	}
	r := &Resolver{
		logger:   logger.With(zap.String("dataDir", settings.DataDir)),
		settings: settings,
		exclude:  exclude,
	}
	if settings.CacheTTL > 0 {
		r.cache = cache.New(settings.CacheTTL, settings.CacheTTL*2)
	}
	return r
}

// ModelIDs lists the slugs of all model files in directory order.
// A missing data directory is an empty catalog.
func (r *Resolver) ModelIDs() ([]string, error) {
	entries, err := os.ReadDir(r.settings.DataDir)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("data directory does not exist")
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, dataFileExt) {
			continue
		}
		if _, ok := r.exclude[name]; ok {
			continue
		}
		id := strings.TrimSuffix(name, dataFileExt)
		if !ValidSlug(id) {
			r.logger.Warn("skipping data file with invalid name", zap.String("file", name))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Model returns the record for id, or ErrNotFound.
func (r *Resolver) Model(id string) (*vo.ModelRecord, error) {
	if !ValidSlug(id) || r.excluded(id) {
		return nil, ErrNotFound
	}
	if r.cache != nil {
		if cached, found := r.cache.Get(id); found {
			return cached.(*vo.ModelRecord), nil
		}
	}

	path := r.path(id)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	record, err := decodeModel(id, data)
	if err != nil {
		return nil, &MalformedDataError{Path: path, Err: err}
	}
	if r.cache != nil {
		r.cache.Set(id, record, cache.DefaultExpiration)
	}
	return record, nil
}

// Problem returns a model and one of its problems, or ErrNotFound.
func (r *Resolver) Problem(modelID, problemID string) (*vo.ModelRecord, *vo.Problem, error) {
	if !ValidSlug(problemID) {
		return nil, nil, ErrNotFound
	}
	model, err := r.Model(modelID)
	if err != nil {
		return nil, nil, err
	}
	problem, ok := model.Problem(problemID)
	if !ok {
		return nil, nil, ErrNotFound
	}
	return model, problem, nil
}

// Models loads every model and stops at the first broken file.
func (r *Resolver) Models() ([]*vo.ModelRecord, error) {
	ids, err := r.ModelIDs()
	if err != nil {
		return nil, err
	}
	models := make([]*vo.ModelRecord, 0, len(ids))
	for _, id := range ids {
		model, err := r.Model(id)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return models, nil
}

// Validate decodes every model file and reports all failures.
func (r *Resolver) Validate() (int, error) {
	ids, err := r.ModelIDs()
	if err != nil {
		return 0, err
	}
	var errs error
	for _, id := range ids {
		if _, err := r.Model(id); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return len(ids), errs
}

// Invalidate drops memoized records, e.g. after the data directory changed.
func (r *Resolver) Invalidate() {
	if r.cache != nil {
		r.cache.Flush()
	}
}

func (r *Resolver) excluded(id string) bool {
	_, ok := r.exclude[id+dataFileExt]
	return ok
}

func (r *Resolver) path(id string) string {
	return filepath.Join(r.settings.DataDir, id+dataFileExt)
}

func decodeModel(id string, data []byte) (*vo.ModelRecord, error) {
	record := &vo.ModelRecord{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, err
	}
	record.Slug = id
	if img, ok := record.ImageURL.Get(); ok && strings.TrimSpace(img) == "" {
		record.ImageURL = vo.None[string]()
	}

	seen := make(map[string]struct{}, len(record.Problems))
	for i, problem := range record.Problems {
		if !ValidSlug(problem.ID) {
			return nil, fmt.Errorf("problem %d has invalid id %q", i, problem.ID)
		}
		if _, dup := seen[problem.ID]; dup {
			return nil, fmt.Errorf("duplicate problem id %q", problem.ID)
		}
		seen[problem.ID] = struct{}{}
	}
	return record, nil
}
