package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"decotree/internal/config"
	"decotree/internal/observability"
	"decotree/internal/snapshot"
	"decotree/pkg/tree"
)

// session carries what every command needs once options are parsed.
type session struct {
	ctx     context.Context
	name    string
	logger  *slog.Logger
	svc     *snapshot.Service
	events  *observability.ExpvarRecorder
	metrics *prometheus.Registry
	journal *observability.Journal
	closers []func() error
}

func (cfg *MainConfig) runContext() context.Context {
	if cfg.ctx == nil {
		return context.Background()
	}
	return cfg.ctx
}

// open resolves configuration with flags taking precedence over the
// environment and the environment over the file.
func (cfg *MainConfig) open(errOut io.Writer) (*session, error) {
	if cfg.Config != "" {
		if _, err := os.Stat(cfg.Config); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}
	file, err := config.LoadOptional(cfg.Config)
	if err != nil {
		return nil, err
	}
	getenv := cfg.getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := file.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	if cfg.Driver != "" {
		file.Snapshot.Driver = cfg.Driver
	}
	if cfg.Name != "" {
		file.Snapshot.Name = cfg.Name
	}
	res, err := file.Resolve()
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		res.LogLevel = slog.LevelDebug
	}
	return openSession(cfg.runContext(), res, errOut)
}

func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func openSession(ctx context.Context, res *config.Resolved, errOut io.Writer) (*session, error) {
	if errOut == nil {
		errOut = os.Stderr
	}
	logger := newLogger(errOut, res.LogLevel, res.LogFormat)
	repo, err := snapshot.Open(ctx, res.Snapshot)
	if err != nil {
		return nil, err
	}
	s := &session{
		ctx:     ctx,
		name:    res.Name,
		logger:  logger,
		svc:     snapshot.NewService(repo, logger),
		events:  observability.NewExpvarRecorder(""),
		metrics: prometheus.NewRegistry(),
		closers: []func() error{repo.Close},
	}
	if res.Journal != "" {
		f, err := os.OpenFile(res.Journal, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			_ = s.close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		s.journal = observability.NewJournal(f)
		s.closers = append(s.closers, f.Close)
	}
	logger.Debug("session opened", "driver", string(res.Snapshot.Driver), "name", res.Name)
	return s, nil
}

// decorators returns the observability decorator installed on every tree the
// session builds.
func (s *session) decorators() ([]tree.Decorator, error) {
	prom, err := observability.NewPrometheusRecorder(s.metrics)
	if err != nil {
		return nil, err
	}
	recs := []observability.Recorder{observability.NewLogRecorder(s.logger), s.events, prom}
	if s.journal != nil {
		recs = append(recs, s.journal)
	}
	return []tree.Decorator{observability.NewDecorator(recs...)}, nil
}

// close releases the repository and journal. Calling it again is a no-op.
func (s *session) close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	if s.journal != nil && first == nil {
		first = s.journal.Err()
	}
	return first
}

// writeStats prints per-hook event counts and live entities per kind.
func (s *session) writeStats(w io.Writer) error {
	snap := s.events.Snapshot()
	names := make([]string, 0, len(snap.Events))
	for k := range snap.Events {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("events:\n")
	for _, k := range names {
		fmt.Fprintf(&b, "  %s %d\n", k, snap.Events[k])
	}
	families, err := s.metrics.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	b.WriteString("live:\n")
	for _, mf := range families {
		if mf.GetName() != "decotree_live_entities" {
			continue
		}
		for _, m := range mf.GetMetric() {
			kind := ""
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "kind" {
					kind = lp.GetValue()
				}
			}
			fmt.Fprintf(&b, "  %s %d\n", kind, int64(m.GetGauge().GetValue()))
		}
	}
	_, err = io.WriteString(w, b.String())
	return err
}
