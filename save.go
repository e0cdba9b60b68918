package metaset

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/reoring/metaset/codec"
)

// BackupDirName is the subdirectory, sibling to the save target, that holds
// pre-save backups.
const BackupDirName = "backups"

// DefaultIndent is the indentation width used when SaveOpt does not say
// otherwise.
const DefaultIndent = 2

// backupTimeLayout gives second-granularity backup names. Two saves of the
// same target within one second reuse, and overwrite, the same backup name.
const backupTimeLayout = "20060102_150405"

// timeNow is stubbed in tests.
var timeNow = time.Now

// SaveFile serializes data as JSON and writes it to path atomically. When
// the target already exists its current content is first copied verbatim to
// backups/<name>.<timestamp>.bak beside it. The new content then goes to a
// temporary file in the target's directory and is moved over the target in
// one rename, so the original is never truncated or partially overwritten
// in place: a failure at any step leaves it exactly as it was.
func SaveFile(data any, path string, opts ...SaveOpt) error {
	opt := SaveOpt{}
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	indent := opt.Indent
	if indent == 0 {
		indent = DefaultIndent
	}

	if !opt.DisableBackup {
		if err := backupExisting(path, opt.Logger); err != nil {
			return err
		}
	}

	out, err := codec.Marshal(data, codec.Options{Indent: indent, EscapeHTML: opt.EscapeHTML})
	if err != nil {
		return fmt.Errorf("metaset: encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("metaset: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("metaset: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("metaset: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("metaset: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("metaset: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("metaset: replace %s: %w", path, err)
	}

	if opt.Logger != nil {
		opt.Logger.Info("file saved", "path", path, "bytes", len(out))
	}
	return nil
}

// backupExisting ensures the backups directory exists and copies the current
// target, if any, into it under a timestamped name.
func backupExisting(path string, logger *slog.Logger) error {
	dir := filepath.Join(filepath.Dir(path), BackupDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("metaset: create backup dir: %w", err)
	}

	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("metaset: open target for backup: %w", err)
	}
	defer src.Close()

	backupPath := filepath.Join(dir, filepath.Base(path)+"."+timeNow().Format(backupTimeLayout)+".bak")
	dst, err := os.Create(backupPath)
	if err != nil {
		return fmt.Errorf("metaset: create backup: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("metaset: write backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("metaset: close backup: %w", err)
	}

	if logger != nil {
		logger.Info("backup created", "path", backupPath)
	}
	return nil
}
