package tickets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Artifact buckets under the media root
const (
	BucketQR      = "qr"
	BucketTickets = "tickets"
)

func QRKey(bookingID string) string {
	return BucketQR + "/" + bookingID + ".png"
}

func TicketKey(bookingID string) string {
	return BucketTickets + "/" + TicketFilename(bookingID)
}

func TicketFilename(bookingID string) string {
	return "ticket_" + bookingID + ".pdf"
}

// Store persists ticket artifacts by slash-separated key
type Store interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	AssetResolver
}

// FileStore keeps artifacts on local disk below root
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media root: %w", err)
	}
	for _, bucket := range []string{BucketQR, BucketTickets} {
		if err := os.MkdirAll(filepath.Join(abs, bucket), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", bucket, err)
		}
	}
	return &FileStore{root: abs}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.root, clean), nil
}

// Put writes through a temp file and rename so readers never see a partial artifact
func (s *FileStore) Put(_ context.Context, key string, data []byte) (string, error) {
	target, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to store artifact: %w", err)
	}
	return key, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	target, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrArtifactNotFound
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

// ResolveAsset maps a reference to a readable local file. Absolute paths are
// taken as is, anything else is a key under the media root.
func (s *FileStore) ResolveAsset(ref string) (string, error) {
	var local string
	if filepath.IsAbs(ref) {
		local = ref
	} else {
		p, err := s.path(ref)
		if err != nil {
			return "", err
		}
		local = p
	}

	info, err := os.Stat(local)
	if err != nil {
		return "", fmt.Errorf("asset %q: %w", ref, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("asset %q is a directory", ref)
	}
	return local, nil
}
