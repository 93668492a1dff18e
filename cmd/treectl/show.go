package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scott-cotton/cli"

	"decotree/pkg/tree"
)

func showCmd(cfg *ShowConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Show.Parse(cc, args)
	if err != nil {
		cfg.Show.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: show takes no arguments", cli.ErrUsage)
	}
	s, err := cfg.open(os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()
	return show(s, cc.Out, cfg.Version, cfg.JSON, cfg.Stats)
}

func show(s *session, w io.Writer, version int, asJSON, stats bool) error {
	if asJSON {
		snap, err := s.svc.Load(s.ctx, s.name, version)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap.Doc)
	}
	root, info, err := loadTree(s, version)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s@%d %s\n", info.Name, info.Version, formatProps(root.Props()))
	tree.Walk(root, func(n *tree.Node) bool {
		fmt.Fprintf(w, "%s- #%d %s\n", strings.Repeat("  ", tree.Depth(n)), n.ID(), formatProps(n.Props()))
		return true
	})
	if stats {
		if err := s.writeStats(w); err != nil {
			return err
		}
	}
	_, err = root.Destroy()
	return err
}

// loadTree hydrates every stored property of a version into a decorated tree.
func loadTree(s *session, version int) (*tree.Root, snapshotInfo, error) {
	decs, err := s.decorators()
	if err != nil {
		return nil, snapshotInfo{}, err
	}
	return s.svc.LoadTree(s.ctx, s.name, version, decs, anyPropertyDecoders(), nil)
}

func formatProps(p tree.Properties) string {
	keys := p.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+formatValue(p[k]))
	}
	return strings.Join(parts, " ")
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case json.Number:
		return x.String()
	case nil:
		return "null"
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
