package main

import (
	"fmt"

	"github.com/signadot/keyedarchive/encode"

	"github.com/scott-cotton/cli"
)

func decode(cfg *DecodeConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Decode.Parse(cc, args)
	if err != nil {
		cfg.Decode.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	for i, arg := range inputs(args) {
		arch, err := getArchive(cfg.MainConfig, cc, arg)
		if err != nil {
			return err
		}
		out := arch.Root
		if cfg.Top {
			out = arch.Top
		}
		if out == nil {
			return fmt.Errorf("%s: archive has no root object", arg)
		}
		if i > 0 && !cfg.outFormat().IsBinary() {
			if err := writeSep(cc.Out); err != nil {
				return err
			}
		}
		if err := encode.Encode(out, cc.Out, cfg.encOpts(cc.Out)...); err != nil {
			return fmt.Errorf("error encoding %s: %w", arg, err)
		}
	}
	return nil
}
