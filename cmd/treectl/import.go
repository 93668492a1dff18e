package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scott-cotton/cli"

	"decotree/pkg/tree"
	"decotree/pkg/treejson"
)

func importCmd(cfg *ImportConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Import.Parse(cc, args)
	if err != nil {
		cfg.Import.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: import requires one argument, a file path or -", cli.ErrUsage)
	}
	data, err := readInput(cc, args[0])
	if err != nil {
		return err
	}
	s, err := cfg.open(os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()
	if err := importDocument(s, cc.Out, data, splitKeys(cfg.Keys), cfg.Stats); err != nil {
		return err
	}
	return s.close()
}

func readInput(cc *cli.Context, arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(cc.In)
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", arg, err)
	}
	return data, nil
}

func splitKeys(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// importDocument hydrates data into a decorated tree and saves it. With no
// keys every property in the document is kept.
func importDocument(s *session, w io.Writer, data []byte, keys []string, stats bool) error {
	doc, err := treejson.Unmarshal(data)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		keys = treejson.Keys(doc)
	}
	decs, err := s.decorators()
	if err != nil {
		return err
	}
	root, err := treejson.FromJSON(doc, decs, propertyDecoders(keys), nil)
	if err != nil {
		return fmt.Errorf("hydrate document: %w", err)
	}
	nodes := 0
	tree.Walk(root, func(*tree.Node) bool { nodes++; return true })
	info, err := s.svc.SaveTree(s.ctx, s.name, root, treejson.Identity(keys...))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "saved %s@%d (%d nodes, %d bytes)\n", info.Name, info.Version, nodes, info.Size)
	if stats {
		if err := s.writeStats(w); err != nil {
			return err
		}
	}
	_, err = root.Destroy()
	return err
}
