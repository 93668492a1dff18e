package snapshot

import (
	"context"
	"fmt"

	"decotree/internal/observability"
	"decotree/pkg/tree"
	"decotree/pkg/treejson"
)

// Service saves live trees into a Repository and hydrates them back.
type Service struct {
	repo   Repository
	logger observability.Logger
}

// NewService wraps repo. A nil logger discards output.
func NewService(repo Repository, logger observability.Logger) *Service {
	return &Service{repo: repo, logger: observability.OrNop(logger)}
}

// Repository returns the backing repository.
func (s *Service) Repository() Repository { return s.repo }

// SaveTree encodes root with encoders and stores it as the next version of
// name.
func (s *Service) SaveTree(ctx context.Context, name string, root tree.Entity, encoders treejson.Encoders) (Info, error) {
	doc, err := treejson.ToJSON(root, encoders)
	if err != nil {
		return Info{}, fmt.Errorf("encode tree %s: %w", name, err)
	}
	info, err := s.repo.Save(ctx, name, doc)
	if err != nil {
		s.logger.Error("snapshot save failed", "name", name, "error", err)
		return Info{}, err
	}
	s.logger.Info("snapshot saved", "name", name, "version", info.Version, "size", info.Size)
	return info, nil
}

// Load returns version of name, or the latest version when version is 0.
func (s *Service) Load(ctx context.Context, name string, version int) (Snapshot, error) {
	if version == 0 {
		return s.repo.Latest(ctx, name)
	}
	return s.repo.Get(ctx, name, version)
}

// LoadTree fetches a snapshot (latest when version is 0) and hydrates it into
// a new tree carrying decorators.
func (s *Service) LoadTree(ctx context.Context, name string, version int, decorators []tree.Decorator, before, after treejson.Decoders) (*tree.Root, Info, error) {
	snap, err := s.Load(ctx, name, version)
	if err != nil {
		return nil, Info{}, err
	}
	root, err := treejson.FromJSON(snap.Doc, decorators, before, after)
	if err != nil {
		return nil, Info{}, fmt.Errorf("hydrate %s@%d: %w", name, snap.Version, err)
	}
	s.logger.Debug("snapshot loaded", "name", name, "version", snap.Version)
	return root, snap.Info, nil
}

// LoadInto fetches a snapshot (latest when version is 0) and hydrates it into
// target, an existing Root or Node. Document children are appended to the
// target's child list.
func (s *Service) LoadInto(ctx context.Context, name string, version int, target tree.Container, before, after treejson.Decoders) (Info, error) {
	snap, err := s.Load(ctx, name, version)
	if err != nil {
		return Info{}, err
	}
	if err := treejson.Hydrate(snap.Doc, target, before, after); err != nil {
		return Info{}, fmt.Errorf("hydrate %s@%d into %s %d: %w", name, snap.Version, target.Kind(), target.ID(), err)
	}
	s.logger.Debug("snapshot grafted", "name", name, "version", snap.Version, "target", uint64(target.ID()))
	return snap.Info, nil
}
