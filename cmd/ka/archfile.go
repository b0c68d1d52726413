package main

import (
	"fmt"
	"io"

	"github.com/signadot/keyedarchive"
	"github.com/signadot/keyedarchive/ir"
	"github.com/signadot/keyedarchive/plist"

	"github.com/scott-cotton/cli"
)

// inputs defaults to reading standard input.
func inputs(args []string) []string {
	if len(args) == 0 {
		return []string{"-"}
	}
	return args
}

func readPlist(cc *cli.Context, path string) (*plist.Value, error) {
	if path != "-" {
		return plist.Load(path)
	}
	return plist.Read(cc.In)
}

func getArchive(cfg *MainConfig, cc *cli.Context, path string) (*keyedarchive.Archive, error) {
	v, err := readPlist(cc, path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	arch, err := keyedarchive.DecodeArchive(v, cfg.decodeOpts()...)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	theLog.Debug("decoded", "file", path, "archiver", arch.Archiver, "version", arch.Version)
	return arch, nil
}

// getRoot decodes the root object of the archive at path.
func getRoot(cfg *MainConfig, cc *cli.Context, path string) (*ir.Node, error) {
	v, err := readPlist(cc, path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	root, err := keyedarchive.Decode(v, cfg.decodeOpts()...)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return root, nil
}

func writeSep(w io.Writer) error {
	_, err := w.Write([]byte("---\n"))
	return err
}
