package cmd

import (
	"fmt"
	"strconv"

	"github.com/go-kit/log"
	"github.com/spf13/afero"

	"github.com/OpenTraceLab/OpenTraceJIC/pkg/address"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/bitstream"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/dtree"
	"github.com/OpenTraceLab/OpenTraceJIC/pkg/knowledge"
)

// env is shared by all subcommands of one root command.
type env struct {
	fs     afero.Fs
	logger log.Logger
}

func (e *env) translator(path string) (*address.Translator, error) {
	tables, err := knowledge.Load(e.fs, path)
	if err != nil {
		return nil, err
	}
	return address.NewTranslator(tables), nil
}

func (e *env) tree(path string) (*dtree.Tree, error) {
	if path == "" {
		return dtree.Default()
	}
	p, err := dtree.NewParser()
	if err != nil {
		return nil, err
	}
	return p.ParseFile(e.fs, path)
}

func (e *env) image(path string) (*bitstream.Image, error) {
	return bitstream.Open(e.fs, path)
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.ParseInt(a, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", a, err)
		}
		out[i] = int(v)
	}
	return out, nil
}

// regionFlags holds the diff region shared by diff and discover.
type regionFlags struct {
	skipHead int
	skipTail int
	all      bool
}

func (r *regionFlags) region() bitstream.Region {
	if r.all {
		return bitstream.Region{}
	}
	return bitstream.Region{SkipHeadBytes: r.skipHead, SkipTailBytes: r.skipTail}
}
