package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jusunglee/singlish/internal/logger"
	"github.com/jusunglee/singlish/internal/transliteration"
	"github.com/jusunglee/singlish/internal/tui"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	if err := mainE(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := ff.NewFlagSet("singlish")

	var (
		rulesPath   = fs.StringLong("rules", "", "YAML rule file (defaults to the built-in Sinhala rules)")
		interactive = fs.BoolLong("interactive", "Convert while typing in a terminal UI")
		detail      = fs.BoolLong("detail", "Print one JSON object per line with unresolved words")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("SINGLISH")); err != nil {
		fmt.Fprintf(stdout, "%s\n", ffhelp.Flags(fs))
		if errors.Is(err, ff.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parsing flags: %w", err)
	}

	logger.New()

	cfg := transliteration.Config{Registry: transliteration.DefaultRegistry()}
	if *rulesPath != "" {
		rules, err := transliteration.LoadRulesFile(*rulesPath)
		if err != nil {
			return fmt.Errorf("loading rules: %w", err)
		}
		cfg.Rules = rules
	}
	engine, err := transliteration.New(cfg)
	if err != nil {
		return err
	}

	if *interactive {
		return tui.Run(engine)
	}

	out := bufio.NewWriter(stdout)
	defer out.Flush()

	write := func(line string) error {
		if !*detail {
			_, err := fmt.Fprintln(out, engine.Convert(line))
			return err
		}
		res := engine.ConvertDetailed(line)
		unresolved := res.Unresolved
		if unresolved == nil {
			unresolved = []transliteration.Span{}
		}
		return json.NewEncoder(out).Encode(struct {
			Input      string                 `json:"input"`
			Output     string                 `json:"output"`
			Unresolved []transliteration.Span `json:"unresolved"`
		}{line, res.Output, unresolved})
	}

	if rest := fs.GetArgs(); len(rest) > 0 {
		return write(strings.Join(rest, " "))
	}

	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		if err := write(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}
