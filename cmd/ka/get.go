package main

import (
	"fmt"
	"io"

	"github.com/signadot/keyedarchive/encode"
	"github.com/signadot/keyedarchive/ir"

	"github.com/scott-cotton/cli"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		cfg.Get.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get requires one argument, an object path", cli.ErrUsage)
	}
	path, err := objectPath(args[0])
	if err != nil {
		return err
	}
	var want *ir.Type
	if cfg.Type != "" {
		var t ir.Type
		if err := t.UnmarshalText([]byte(cfg.Type)); err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		want = &t
	}
	found := false
	for i, arg := range inputs(args[1:]) {
		root, err := getRoot(cfg.MainConfig, cc, arg)
		if err != nil {
			return err
		}
		res, err := root.GetPath(path)
		if err != nil {
			return fmt.Errorf("error executing get on %s: %w", arg, err)
		}
		if res == nil {
			// absent: nothing to print
			continue
		}
		if want != nil && res.Type != *want {
			theLog.Debug("type mismatch", "file", arg, "path", path, "type", res.Type, "want", *want)
			continue
		}
		found = true
		if err := writeResult(cfg.MainConfig, cc.Out, res, i > 0); err != nil {
			return err
		}
	}
	if !found {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func list(cfg *ListConfig, cc *cli.Context, args []string) error {
	args, err := cfg.List.Parse(cc, args)
	if err != nil {
		cfg.List.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: list requires one argument, an object path", cli.ErrUsage)
	}
	path, err := objectPath(args[0])
	if err != nil {
		return err
	}
	for i, arg := range inputs(args[1:]) {
		root, err := getRoot(cfg.MainConfig, cc, arg)
		if err != nil {
			return err
		}
		res, err := root.ListPath(nil, path)
		if err != nil {
			return fmt.Errorf("error executing list on %s: %w", arg, err)
		}
		if err := writeResult(cfg.MainConfig, cc.Out, ir.FromSlice(res), i > 0); err != nil {
			return err
		}
	}
	return nil
}

func objectPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: invalid path \"\"", cli.ErrUsage)
	}
	if p[0] != '$' {
		if p[0] != '.' && p[0] != '[' {
			p = "." + p
		}
		p = "$" + p
	}
	return p, nil
}

func writeResult(cfg *MainConfig, w io.Writer, res *ir.Node, sep bool) error {
	if sep && !cfg.outFormat().IsBinary() {
		if err := writeSep(w); err != nil {
			return err
		}
	}
	if err := encode.Encode(res, w, cfg.encOpts(w)...); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}
