package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tkng/akaza/binarydict"
	"github.com/tkng/akaza/config"
	"github.com/tkng/akaza/dawg"
	"github.com/tkng/akaza/dictkey"
	"github.com/tkng/akaza/dictsrc"
)

const usage = `Usage:
  akaza-dict build -config akaza.yml
  akaza-dict build [-encoding euc-jp] [-type skk|tsv] -o system_dict.trie source...
  akaza-dict lookup system_dict.trie [reading...]
  akaza-dict dump [-raw] system_dict.trie
`

var ErrUsage = errors.New("bad usage")

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = build(os.Args[2:])
	case "lookup":
		err = lookup(os.Args[2:])
	case "dump":
		err = dump(os.Args[2:])
	default:
		err = ErrUsage
	}

	if errors.Is(err, ErrUsage) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) binarydict.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return binarydict.NewDefaultLogger(level)
}

func build(args []string) error {
	flags := flag.NewFlagSet("build", flag.ContinueOnError)
	configPath := flags.String("config", "", "YAML configuration listing the source dictionaries")
	output := flags.String("o", "", "output file")
	encoding := flags.String("encoding", dictsrc.EncodingUTF8, "encoding of the sources")
	dictType := flags.String("type", dictsrc.TypeSKK, "format of the sources: skk or tsv")
	verbose := flags.Bool("v", false, "verbose logging")
	if err := flags.Parse(args); err != nil {
		return ErrUsage
	}

	var conf *config.Config
	if *configPath != "" {
		var err error
		if conf, err = config.Load(*configPath); err != nil {
			return err
		}
	} else {
		conf = &config.Config{}
		for _, path := range flags.Args() {
			conf.Dicts = append(conf.Dicts, config.DictConfig{
				Path:     path,
				Encoding: *encoding,
				DictType: *dictType,
			})
		}
		if err := conf.Validate(); err != nil {
			return err
		}
	}
	if *output != "" {
		conf.Output = *output
	}
	if conf.Output == "" {
		return ErrUsage
	}

	logger := newLogger(*verbose)
	var entries []binarydict.Entry
	for _, src := range conf.Dicts {
		read, err := dictsrc.Open(src.Path, src.Encoding, src.DictType)
		if err != nil {
			return err
		}
		logger.Info("read source dictionary", "path", src.Path, "entries", len(read))
		entries = append(entries, read...)
	}

	dict := binarydict.New(binarydict.WithLogger(logger))
	defer dict.Close()
	if err := dict.Build(entries); err != nil {
		return err
	}
	return dict.Save(conf.Output)
}

func lookup(args []string) error {
	flags := flag.NewFlagSet("lookup", flag.ContinueOnError)
	verbose := flags.Bool("v", false, "verbose logging")
	if err := flags.Parse(args); err != nil || flags.NArg() < 1 {
		return ErrUsage
	}

	dict := binarydict.New(binarydict.WithLogger(newLogger(*verbose)))
	defer dict.Close()
	if err := dict.Load(flags.Arg(0)); err != nil {
		return err
	}

	readings := flags.Args()[1:]
	if len(readings) == 0 {
		return repl(dict)
	}

	for _, reading := range readings {
		if err := printCandidates(os.Stdout, dict, reading); err != nil {
			return err
		}
	}
	return nil
}

func dump(args []string) error {
	flags := flag.NewFlagSet("dump", flag.ContinueOnError)
	raw := flags.Bool("raw", false, "print the trie nodes instead of the entries")
	if err := flags.Parse(args); err != nil || flags.NArg() != 1 {
		return ErrUsage
	}

	if *raw {
		f, err := os.Open(flags.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		return dawg.DumpFile(f, os.Stdout)
	}

	dict := binarydict.New(binarydict.WithLogger(newLogger(false)))
	defer dict.Close()
	if err := dict.Load(flags.Arg(0)); err != nil {
		return err
	}
	for reading, candidates := range dict.Entries() {
		fmt.Printf("%s\t%s\n", reading, dictkey.Join(candidates))
	}
	return nil
}
