package main

import (
	"fmt"
	"io"
	"os"

	"github.com/signadot/keyedarchive"
	"github.com/signadot/keyedarchive/encode"
	"github.com/signadot/keyedarchive/format"

	"github.com/scott-cotton/cli"

	"github.com/mattn/go-isatty"
)

type MainConfig struct {
	Color   bool `cli:"name=color desc='encode with color'"`
	WireOut bool `cli:"name=wire desc='output in compact format'"`
	NoTags  bool `cli:"name=notags desc='omit class tags in text output'"`
	Gops    bool `cli:"name=gops desc='start a gops diagnostics agent'"`
	V       bool `cli:"name=v desc='log decoder diagnostics'"`
	Depth   int  `cli:"name=depth desc='maximum nesting depth of archived objects'"`

	T bool `cli:"name=t aliases=text desc='output text'"`
	J bool `cli:"name=j aliases=json desc='output json'"`
	Y bool `cli:"name=y aliases=yaml desc='output yaml'"`
	C bool `cli:"name=c aliases=cbor desc='output cbor'"`

	OutFormat *format.Format

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fps ...**format.Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := format.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		for _, fp := range fps {
			*fp = &f
		}
		return f, nil
	})
}

func (cfg *MainConfig) outFormat() format.Format {
	var f format.Format
	switch {
	case cfg.T:
		f = format.TextFormat
	case cfg.Y:
		f = format.YAMLFormat
	case cfg.J:
		f = format.JSONFormat
	case cfg.C:
		f = format.CBORFormat
	}
	if cfg.OutFormat != nil {
		f = *cfg.OutFormat
	}
	return f
}

func (cfg *MainConfig) decodeOpts() []keyedarchive.DecodeOption {
	return []keyedarchive.DecodeOption{
		keyedarchive.WithLogger(theLog),
		keyedarchive.MaxDepth(cfg.Depth),
	}
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	res := []encode.EncodeOption{
		encode.EncodeFormat(cfg.outFormat()),
		encode.EncodeWire(cfg.WireOut),
		encode.EncodeTags(!cfg.NoTags),
	}
	if cfg.Color {
		res = append(res, encode.EncodeColors(encode.NewColors()))
		return res
	}
	colorsSet := false
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		colorsSet = opt.Value != nil
		break
	}
	if colorsSet {
		return res
	}
	f, ok := w.(*os.File)
	if !ok {
		return res
	}
	if isatty.IsTerminal(f.Fd()) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}

type DecodeConfig struct {
	*MainConfig
	Top bool `cli:"name=top desc='decode every $top entry, not just root'"`

	Decode *cli.Command
}

type GetConfig struct {
	*MainConfig
	Type string `cli:"name=type desc='only output results of this type (Object, Array, String, ...)'"`

	Get *cli.Command
}

type ListConfig struct {
	*MainConfig

	List *cli.Command
}

type QueryConfig struct {
	*MainConfig
	Vars map[string]any

	Query *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Reverse bool `cli:"name=r desc='reverse the diff'"`

	Diff *cli.Command
}

type PatchConfig struct {
	*MainConfig
	PatchFile string `cli:"name=p desc='RFC 6902 JSON patch file'"`

	Patch *cli.Command
}
