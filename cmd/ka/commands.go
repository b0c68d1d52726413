package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		&cli.Opt{
			Name:        "o",
			Description: "output file (default stdout)",
			Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
		},
		&cli.Opt{
			Name:        "O",
			Aliases:     []string{"ofmt"},
			Description: "output format: text/t, json/j, yaml/y, cbor/c",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.OutFormat), "(format)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "ka").
		WithSynopsis("ka [opts] command [opts]").
		WithDescription("ka decodes and inspects keyed archives.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return kaMain(cfg, cc, args)
		}).
		WithSubs(
			DecodeCommand(cfg),
			GetCommand(cfg),
			ListCommand(cfg),
			QueryCommand(cfg),
			DiffCommand(cfg),
			PatchCommand(cfg))
}

func DecodeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DecodeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("decode").
		WithAliases("d", "dec").
		WithOpts(opts...).
		WithSynopsis("decode [-top] [files]").
		WithDescription("decode keyed archives in binary or xml property list files").
		WithRun(func(cc *cli.Context, args []string) error {
			return decode(cfg, cc, args)
		})
	cfg.Decode = cmd
	return cmd
}

func GetCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GetConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("get").
		WithAliases("g", "ge").
		WithOpts(opts...).
		WithSynopsis("get [-type T] <objectpath> [files]").
		WithDescription("get elements of decoded archives").
		WithRun(func(cc *cli.Context, args []string) error {
			return get(cfg, cc, args)
		})
	cfg.Get = cmd
	return cmd
}

func ListCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ListConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.List, "list").
		WithAliases("l").
		WithSynopsis("list <objectpath> [files]").
		WithDescription("list every element of decoded archives matching a path with [*] wildcards").
		WithRun(func(cc *cli.Context, args []string) error {
			return list(cfg, cc, args)
		})
}

func QueryCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &QueryConfig{MainConfig: mainCfg, Vars: map[string]any{}}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts,
		&cli.Opt{
			Name:        "e",
			Description: "set an expression variable, the value is json or a plain string",
			Type:        cli.NamedFuncOpt(cli.FuncOpt(varOptTypeFunc(cfg.Vars)), "(name=val)"),
		})
	cmd := cli.NewCommand("query").
		WithAliases("q").
		WithOpts(opts...).
		WithSynopsis("query [-e name=val]... <expr> [files]").
		WithDescription(queryDescription).
		WithRun(func(cc *cli.Context, args []string) error {
			return queryFiles(cfg, cc, args)
		})
	cfg.Query = cmd
	return cmd
}

func varOptTypeFunc(vars map[string]any) func(cc *cli.Context, a string) (any, error) {
	return func(cc *cli.Context, a string) (any, error) {
		if err := varFunc(vars, a); err != nil {
			return nil, err
		}
		return 0, nil
	}
}

const queryDescription = `query evaluates an expr-lang expression against each decoded archive.

The decoded root is available as 'root'.  The functions

  getpath("$.a.b[0]")   returns the element at a path, or nil
  listpath("$.a[*].b")  returns every element matching a path
  classname("$.a")      returns the archived class of the element at a path

are also available.`

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("diff").
		WithAliases("di").
		WithOpts(opts...).
		WithSynopsis("diff [-r] a b").
		WithDescription("diff decoded archives, exiting 1 when they differ").
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
	cfg.Diff = cmd
	return cmd
}

func PatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PatchConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("patch").
		WithAliases("p", "pa").
		WithSynopsis("patch -p <patch.json> [files]").
		WithDescription("apply an RFC 6902 json patch to the json rendering of decoded archives").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return patch(cfg, cc, args)
		})
	cfg.Patch = cmd
	return cmd
}
