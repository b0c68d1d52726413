package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/signadot/keyedarchive/query"

	"github.com/scott-cotton/cli"
)

func queryFiles(cfg *QueryConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Query.Parse(cc, args)
	if err != nil {
		cfg.Query.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: query requires one argument, an expression", cli.ErrUsage)
	}
	src := args[0]
	for i, arg := range inputs(args[1:]) {
		root, err := getRoot(cfg.MainConfig, cc, arg)
		if err != nil {
			return err
		}
		res, err := query.Eval(src, root, cfg.Vars)
		if err != nil {
			return fmt.Errorf("error querying %s: %w", arg, err)
		}
		if err := writeResult(cfg.MainConfig, cc.Out, res, i > 0); err != nil {
			return err
		}
	}
	return nil
}

// varFunc sets vars[name] from "name=val".  val is decoded as json
// when it parses, and taken as a string otherwise.
func varFunc(vars map[string]any, a string) error {
	name, val, ok := strings.Cut(a, "=")
	if !ok || name == "" {
		return fmt.Errorf("%w: expected name=val, got %q", cli.ErrUsage, a)
	}
	if name == "root" {
		return fmt.Errorf("%w: %q is reserved", cli.ErrUsage, name)
	}
	var v any
	if err := json.Unmarshal([]byte(val), &v); err != nil {
		v = val
	}
	vars[name] = v
	return nil
}
