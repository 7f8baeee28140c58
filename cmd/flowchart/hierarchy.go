package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ravi-parthasarathy/flowchart/pkg/flowchart"
)

// loadHierarchy reads and parses a hierarchy file against the configured
// data-source vocabulary.
func loadHierarchy(path string, sources []string) (*flowchart.Hierarchy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read hierarchy: %w", err)
	}
	defer f.Close()

	h, err := flowchart.NewParser(sources).Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse hierarchy %s: %w", path, err)
	}
	return h, nil
}

// dataSelection collects the data sources a run has available. With no
// source flag set every declared source is available; --bam=false and
// --fastq=false mark a source absent.
type dataSelection struct {
	data  []string
	bam   bool
	fastq bool
	flags *pflag.FlagSet
}

func (s *dataSelection) bind(cmd *cobra.Command) {
	s.flags = cmd.Flags()
	s.flags.StringSliceVar(&s.data, "data", nil, "data sources available to the run, e.g. BAM,FASTQ (default: every declared source)")
	s.flags.BoolVar(&s.bam, "bam", false, "shorthand for --data BAM; --bam=false marks BAM absent")
	s.flags.BoolVar(&s.fastq, "fastq", false, "shorthand for --data FASTQ; --fastq=false marks FASTQ absent")
}

func (s *dataSelection) changed(name string) bool {
	return s.flags != nil && s.flags.Changed(name)
}

// tokens returns the selected sources in vocabulary order. Naming a source
// the vocabulary does not declare is an error.
func (s *dataSelection) tokens(vocab flowchart.Vocabulary) ([]string, error) {
	var want, drop []string
	if s.changed("data") {
		want = append(want, s.data...)
	}
	for _, f := range []struct {
		name, tok string
		on        bool
	}{{"bam", "BAM", s.bam}, {"fastq", "FASTQ", s.fastq}} {
		switch {
		case f.on:
			want = append(want, f.tok)
		case s.changed(f.name):
			drop = append(drop, f.tok)
		}
	}

	selected := map[string]bool{}
	if len(want) == 0 && !s.changed("data") {
		for _, tok := range vocab {
			selected[tok] = true
		}
	}
	for _, tok := range append(append([]string(nil), want...), drop...) {
		if !vocab.Contains(tok) {
			return nil, fmt.Errorf("unknown data source %q (declared: %v)", tok, []string(vocab))
		}
	}
	for _, tok := range want {
		selected[tok] = true
	}
	for _, tok := range drop {
		delete(selected, tok)
	}

	var out []string
	for _, tok := range vocab {
		if selected[tok] {
			out = append(out, tok)
		}
	}
	return out, nil
}
