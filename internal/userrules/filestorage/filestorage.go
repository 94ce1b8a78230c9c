// Package filestorage contains the file-based implementation of
// [userrules.Storage].  Every list is kept in its own JSON file within a
// directory.
package filestorage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules/internal/listjson"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/validate"
	renameio "github.com/google/renameio/v2"
)

// ext is the extension of the list files.
const ext = ".json"

// Config is the configuration structure for [Storage].
type Config struct {
	// Logger is used for logging the operation of the storage.  It must not
	// be nil.
	Logger *slog.Logger

	// Dir is the directory with the list files.  It must not be empty.  The
	// directory is not created; if it doesn't exist, all operations fail with
	// [userrules.ErrStorageUnavailable].
	Dir string
}

// type check
var _ validate.Interface = (*Config)(nil)

// Validate implements the [validate.Interface] interface for *Config.
func (c *Config) Validate() (err error) {
	if c == nil {
		return errors.ErrNoValue
	}

	return errors.Join(
		validate.NotNil("Logger", c.Logger),
		validate.NotEmpty("Dir", c.Dir),
	)
}

// Storage is the file-based [userrules.Storage].  It is safe for concurrent use
// with distinct identities, since every identity has its own file and every
// write replaces the file atomically.
type Storage struct {
	logger *slog.Logger
	dir    string
}

// New returns a new properly initialized *Storage.  c must be valid.
func New(c *Config) (s *Storage) {
	return &Storage{
		logger: c.Logger,
		dir:    c.Dir,
	}
}

// type check
var _ userrules.Storage = (*Storage)(nil)

// Load implements the [userrules.Storage] interface for *Storage.  A missing
// file means an empty list.
func (s *Storage) Load(ctx context.Context, id userrules.ID) (rules []userrules.Rule, err error) {
	defer func() { err = errors.Annotate(err, "loading %q: %w", id) }()

	path, err := s.path(id)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return nil, err
	}

	err = s.checkDir()
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.DebugContext(ctx, "file not present", "path", path)

		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: %w", userrules.ErrStorageUnavailable, err)
	}

	rules, err = listjson.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("file %q: %w", path, err)
	}

	s.logger.DebugContext(ctx, "loaded", "path", path, "rules_num", len(rules))

	return rules, nil
}

// Save implements the [userrules.Storage] interface for *Storage.
func (s *Storage) Save(ctx context.Context, id userrules.ID, rules []userrules.Rule) (err error) {
	defer func() { err = errors.Annotate(err, "saving %q: %w", id) }()

	path, err := s.path(id)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return err
	}

	data, err := listjson.Encode(rules)
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return err
	}

	err = renameio.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("%w: %w", userrules.ErrStorageUnavailable, err)
	}

	s.logger.DebugContext(ctx, "saved", "path", path, "rules_num", len(rules))

	return nil
}

// checkDir returns an error wrapping [userrules.ErrStorageUnavailable] if the
// storage directory doesn't exist or is not a directory.
func (s *Storage) checkDir() (err error) {
	fi, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("%w: %w", userrules.ErrStorageUnavailable, err)
	} else if !fi.IsDir() {
		return fmt.Errorf("%w: %q is not a directory", userrules.ErrStorageUnavailable, s.dir)
	}

	return nil
}

// path returns the path to the file of the list with the given identity.
func (s *Storage) path(id userrules.ID) (path string, err error) {
	name := string(id)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("bad list id %q", id)
	}

	return filepath.Join(s.dir, name+ext), nil
}
