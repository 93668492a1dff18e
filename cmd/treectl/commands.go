package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

func MainCommand(ctx context.Context) *cli.Command {
	cfg := &MainConfig{ctx: ctx, getenv: os.Getenv}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "treectl").
		WithSynopsis("treectl [opts] command [opts]").
		WithDescription("treectl stores and inspects versioned tree snapshots.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return treectlMain(cfg, cc, args)
		}).
		WithSubs(
			ImportCommand(cfg),
			ShowCommand(cfg),
			FindCommand(cfg),
			VersionsCommand(cfg),
			NamesCommand(cfg),
			DeleteCommand(cfg))
}

func treectlMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func ImportCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ImportConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Import, "import").
		WithAliases("i").
		WithSynopsis("import [-keys a,b] [-stats] <file|->").
		WithDescription("save a JSON tree document as the next snapshot version").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return importCmd(cfg, cc, args)
		})
}

func ShowCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ShowConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Show, "show").
		WithAliases("s").
		WithSynopsis("show [-version n] [-json] [-stats]").
		WithDescription("print a snapshot as an outline").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return showCmd(cfg, cc, args)
		})
}

func FindCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FindConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Find, "find").
		WithAliases("f").
		WithSynopsis("find [-version n] <expr>").
		WithDescription("list the nodes of a snapshot matching an expression").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return findCmd(cfg, cc, args)
		})
}

func VersionsCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &VersionsConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Versions, "versions").
		WithAliases("v").
		WithSynopsis("versions").
		WithDescription("list the stored versions of a snapshot").
		WithRun(func(cc *cli.Context, args []string) error {
			return versionsCmd(cfg, cc, args)
		})
}

func NamesCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &NamesConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Names, "names").
		WithAliases("ls").
		WithSynopsis("names").
		WithDescription("list every stored snapshot name").
		WithRun(func(cc *cli.Context, args []string) error {
			return namesCmd(cfg, cc, args)
		})
}

func DeleteCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DeleteConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Delete, "delete").
		WithAliases("rm").
		WithSynopsis("delete").
		WithDescription("remove every version of a snapshot").
		WithRun(func(cc *cli.Context, args []string) error {
			return deleteCmd(cfg, cc, args)
		})
}
