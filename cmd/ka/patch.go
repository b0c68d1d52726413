package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/signadot/keyedarchive/ir"
	"github.com/signadot/keyedarchive/query"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/scott-cotton/cli"
)

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		cfg.Patch.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if cfg.PatchFile == "" {
		return fmt.Errorf("%w: patch requires -p <patch.json>", cli.ErrUsage)
	}
	pd, err := os.ReadFile(cfg.PatchFile)
	if err != nil {
		return err
	}
	ops, err := jsonpatch.DecodePatch(pd)
	if err != nil {
		return fmt.Errorf("error decoding patch %s: %w", cfg.PatchFile, err)
	}
	for i, arg := range inputs(args) {
		root, err := getRoot(cfg.MainConfig, cc, arg)
		if err != nil {
			return err
		}
		res, err := applyPatch(ops, root)
		if err != nil {
			return fmt.Errorf("error patching %s: %w", arg, err)
		}
		if err := writeResult(cfg.MainConfig, cc.Out, res, i > 0); err != nil {
			return err
		}
	}
	return nil
}

// applyPatch applies ops to the json rendering of doc.  Class tags,
// bytes and times do not survive the round trip through json.
func applyPatch(ops jsonpatch.Patch, doc *ir.Node) (*ir.Node, error) {
	d, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	out, err := ops.Apply(d)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(out))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return query.FromAny(v)
}
