package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scott-cotton/cli"

	"decotree/internal/query"
	"decotree/pkg/tree"
)

func findCmd(cfg *FindConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Find.Parse(cc, args)
	if err != nil {
		cfg.Find.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: find requires an expression", cli.ErrUsage)
	}
	q, err := query.Compile(strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	s, err := cfg.open(os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = s.close() }()
	return find(s, cc.Out, q, cfg.Version)
}

func find(s *session, w io.Writer, q *query.Query, version int) error {
	root, _, err := loadTree(s, version)
	if err != nil {
		return err
	}
	defer func() { _, _ = root.Destroy() }()
	matches, err := q.Select(root)
	if err != nil {
		return err
	}
	for _, n := range matches {
		fmt.Fprintf(w, "#%d %s %s\n", n.ID(), nodePath(n), formatProps(n.Props()))
	}
	s.logger.Debug("find complete", "query", q.String(), "matches", len(matches))
	return nil
}

// nodePath renders the list positions from the root down to n, e.g. /0/2.
func nodePath(n *tree.Node) string {
	var idx []string
	for cur := n; cur != nil; {
		idx = append(idx, fmt.Sprint(cur.Index()))
		parent, ok := cur.Parent().(*tree.Node)
		if !ok {
			break
		}
		cur = parent
	}
	var b strings.Builder
	for i := len(idx) - 1; i >= 0; i-- {
		b.WriteString("/")
		b.WriteString(idx[i])
	}
	return b.String()
}
