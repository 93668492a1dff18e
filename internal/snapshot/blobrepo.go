package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"decotree/internal/blob"
	"decotree/pkg/treejson"
)

const (
	keyPrefix   = "snapshots/"
	contentType = "application/json"
	// maxSaveAttempts bounds retries when a concurrent writer takes the
	// version number first.
	maxSaveAttempts = 5
)

// BlobRepository stores each version as an object keyed
// snapshots/<name>/<version>.json.
type BlobRepository struct {
	store blob.Store
}

// NewBlobRepository wraps store.
func NewBlobRepository(store blob.Store) *BlobRepository {
	return &BlobRepository{store: store}
}

// Store returns the underlying blob store.
func (r *BlobRepository) Store() blob.Store { return r.store }

func objectKey(name string, version int) string {
	return fmt.Sprintf("%s%s/%08d.json", keyPrefix, name, version)
}

// parseKey splits a key produced by objectKey; ok is false for foreign keys.
func parseKey(key string) (name string, version int, ok bool) {
	rest, found := strings.CutPrefix(key, keyPrefix)
	if !found {
		return "", 0, false
	}
	name, file, found := strings.Cut(rest, "/")
	if !found || name == "" {
		return "", 0, false
	}
	digits, found := strings.CutSuffix(file, ".json")
	if !found {
		return "", 0, false
	}
	v, err := strconv.Atoi(digits)
	if err != nil || v <= 0 {
		return "", 0, false
	}
	return name, v, true
}

// Save implements Repository.
func (r *BlobRepository) Save(ctx context.Context, name string, doc treejson.Object) (Info, error) {
	if err := ValidateName(name); err != nil {
		return Info{}, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return Info{}, fmt.Errorf("encode snapshot %s: %w", name, err)
	}
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		versions, err := r.versions(ctx, name)
		if err != nil {
			return Info{}, err
		}
		next := 1
		if len(versions) > 0 {
			next = versions[len(versions)-1].Version + 1
		}
		bi, err := r.store.Put(ctx, objectKey(name, next), bytes.NewReader(data), blob.PutOptions{
			ContentType: contentType,
			Metadata:    map[string]string{"snapshot-name": name},
		})
		if errors.Is(err, blob.ErrExists) {
			continue
		}
		if err != nil {
			return Info{}, fmt.Errorf("put snapshot %s@%d: %w", name, next, err)
		}
		return Info{Name: name, Version: next, Size: len(data), SavedAt: bi.LastModified}, nil
	}
	return Info{}, fmt.Errorf("save snapshot %s: version contention after %d attempts", name, maxSaveAttempts)
}

// Latest implements Repository.
func (r *BlobRepository) Latest(ctx context.Context, name string) (Snapshot, error) {
	versions, err := r.Versions(ctx, name)
	if err != nil {
		return Snapshot{}, err
	}
	return r.Get(ctx, name, versions[len(versions)-1].Version)
}

// Get implements Repository.
func (r *BlobRepository) Get(ctx context.Context, name string, version int) (Snapshot, error) {
	if err := ValidateName(name); err != nil {
		return Snapshot{}, err
	}
	if version <= 0 {
		return Snapshot{}, notFound(name, version)
	}
	bi, rc, err := r.store.Get(ctx, objectKey(name, version))
	if errors.Is(err, blob.ErrNotFound) {
		return Snapshot{}, notFound(name, version)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot %s@%d: %w", name, version, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %s@%d: %w", name, version, err)
	}
	doc, err := treejson.Unmarshal(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %s@%d: %w", name, version, err)
	}
	return Snapshot{
		Info: Info{Name: name, Version: version, Size: len(data), SavedAt: bi.LastModified},
		Doc:  doc,
	}, nil
}

// Versions implements Repository.
func (r *BlobRepository) Versions(ctx context.Context, name string) ([]Info, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	out, err := r.versions(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, notFound(name, 0)
	}
	return out, nil
}

func (r *BlobRepository) versions(ctx context.Context, name string) ([]Info, error) {
	infos, err := r.store.List(ctx, keyPrefix+name+"/")
	if err != nil {
		return nil, fmt.Errorf("list snapshots %s: %w", name, err)
	}
	out := make([]Info, 0, len(infos))
	for _, bi := range infos {
		n, v, ok := parseKey(bi.Key)
		if !ok || n != name {
			continue
		}
		out = append(out, Info{Name: name, Version: v, Size: int(bi.Size), SavedAt: bi.LastModified})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Delete implements Repository.
func (r *BlobRepository) Delete(ctx context.Context, name string) (int, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}
	versions, err := r.versions(ctx, name)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, v := range versions {
		ok, err := r.store.Delete(ctx, objectKey(name, v.Version))
		if err != nil {
			return removed, fmt.Errorf("delete snapshot %s@%d: %w", name, v.Version, err)
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// Names implements Repository.
func (r *BlobRepository) Names(ctx context.Context) ([]string, error) {
	infos, err := r.store.List(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	seen := map[string]struct{}{}
	var out []string
	for _, bi := range infos {
		name, _, ok := parseKey(bi.Key)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Close implements Repository. Blob stores hold no resources.
func (r *BlobRepository) Close() error { return nil }
