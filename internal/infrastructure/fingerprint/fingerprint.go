package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Finder detects exact-content duplicates under the managed store. Each
// lookup hashes the candidate once and then scans every stored file;
// there is no persistent hash index. Cost is linear in total stored
// bytes, which is acceptable for an offline batch workload.
type Finder struct{}

func New() *Finder {
	return &Finder{}
}

// HashFile computes the SHA-256 content fingerprint of one file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FindDuplicate returns the path of the first file under root whose
// content is byte-identical to the candidate, or "" when none exists.
// Files that merely look similar are never reported: content identity,
// not semantic identity.
func (d *Finder) FindDuplicate(ctx context.Context, candidatePath, root string) (string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return "", nil
	}

	candidateHash, err := HashFile(candidatePath)
	if err != nil {
		return "", err
	}

	var found string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || found != "" {
			return nil
		}

		hash, err := HashFile(path)
		if err != nil {
			// An unreadable stored file is not evidence either way.
			return nil
		}
		if hash == candidateHash {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", root, err)
	}
	return found, nil
}
