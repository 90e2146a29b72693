package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"

	"github.com/tkng/akaza/binarydict"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func printCandidates(w io.Writer, dict *binarydict.Dictionary, reading string) error {
	candidates, err := dict.FindCandidates(reading)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		_, err = fmt.Fprintf(w, "%s: (none)\n", reading)
		return err
	}
	_, err = fmt.Fprintf(w, "%s: %s\n", reading, strings.Join(candidates, " "))
	return err
}

// historyFile returns the REPL history location, or "" to keep no history.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "akaza")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return ""
	}
	return filepath.Join(dir, "dict_history")
}

func repl(dict *binarydict.Dictionary) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "あ> ",
		HistoryFile:     historyFile(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return err
	}
	defer l.Close()
	l.CaptureExitSignal()

	fmt.Fprintf(os.Stderr, "%d readings loaded, type a reading to see its candidates\n", dict.KeyCount())
	for {
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		reading := strings.TrimSpace(line)
		switch reading {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "help":
			fmt.Fprintln(os.Stdout, "type a reading, exit or quit")
			continue
		}

		if err := printCandidates(os.Stdout, dict, reading); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
