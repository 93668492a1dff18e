package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/scott-cotton/cli"

	"decotree/internal/snapshot"
)

type snapshotInfo = snapshot.Info

func versionsCmd(cfg *VersionsConfig, cc *cli.Context, args []string) error {
	if _, err := cfg.Versions.Parse(cc, args); err != nil {
		return err
	}
	s, err := cfg.open(os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()
	return versions(s, cc.Out)
}

func versions(s *session, w io.Writer) error {
	infos, err := s.svc.Repository().Versions(s.ctx, s.name)
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Fprintf(w, "%s@%d\t%d bytes\t%s\n", info.Name, info.Version, info.Size, info.SavedAt.UTC().Format(time.RFC3339))
	}
	return nil
}

func namesCmd(cfg *NamesConfig, cc *cli.Context, args []string) error {
	if _, err := cfg.Names.Parse(cc, args); err != nil {
		return err
	}
	s, err := cfg.open(os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()
	return names(s, cc.Out)
}

func names(s *session, w io.Writer) error {
	all, err := s.svc.Repository().Names(s.ctx)
	if err != nil {
		return err
	}
	for _, n := range all {
		fmt.Fprintln(w, n)
	}
	return nil
}

func deleteCmd(cfg *DeleteConfig, cc *cli.Context, args []string) error {
	if _, err := cfg.Delete.Parse(cc, args); err != nil {
		return err
	}
	s, err := cfg.open(os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()
	return deleteSnapshots(s, cc.Out)
}

func deleteSnapshots(s *session, w io.Writer) error {
	n, err := s.svc.Repository().Delete(s.ctx, s.name)
	if err != nil {
		return err
	}
	s.logger.Info("snapshot deleted", "name", s.name, "versions", n)
	fmt.Fprintf(w, "deleted %d versions of %s\n", n, s.name)
	return nil
}
