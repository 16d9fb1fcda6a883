package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/peterh/liner"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"

	"github.com/henry232323/saffron-lang/pkg/driver"
	"github.com/henry232323/saffron-lang/pkg/errors"
	"github.com/henry232323/saffron-lang/pkg/source"
)

const (
	historyFile = ".saffron_history"
	promptMain  = ">> "
)

func main() {
	app := &cli.App{
		Name:  "saffron",
		Usage: "saffron language toolchain",
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "parse and type-check a source file",
				ArgsUsage: "<file>",
				Action:    checkCommand,
			},
			{
				Name:      "ast",
				Usage:     "dump the AST of a source file",
				ArgsUsage: "<file>",
				Action:    astCommand,
			},
			{
				Name:   "repl",
				Usage:  "start an interactive session",
				Action: replCommand,
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() == 0 {
				return replCommand(c)
			}
			return checkCommand(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		tracerr.PrintSourceColor(err)
		os.Exit(1)
	}
}

func sessionFor(path string) *driver.Saffron {
	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}
	return driver.NewWithBaseDir(dir)
}

func checkCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("no input file provided", 1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return tracerr.Wrap(err)
	}

	src := source.FromFile(path, string(data))
	_, errs := sessionFor(path).CheckSource(src)
	if len(errs) > 0 {
		errors.DisplayErrors(src.Content, errs)
		return cli.Exit("", 1)
	}

	fmt.Printf("%s: ok\n", path)
	return nil
}

func astCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("no input file provided", 1)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return tracerr.Wrap(err)
	}

	src := source.FromFile(path, string(data))
	program, errs := sessionFor(path).ParseSource(src)
	if program == nil {
		errors.DisplayErrors(src.Content, errs)
		return cli.Exit("", 1)
	}

	repr.Println(program)
	return nil
}

func replCommand(c *cli.Context) error {
	session := driver.New()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := filepath.Join(os.TempDir(), historyFile)
	if f, err := os.Open(histPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println("saffron REPL. Ctrl+D exits, :quit to exit.")

	for {
		input, err := line.Prompt(promptMain)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			fmt.Println()
			return nil
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" {
			return nil
		}
		line.AppendHistory(input)

		resultType, errs := session.CheckRepl(input)
		if len(errs) > 0 {
			errors.DisplayErrors(input, errs)
			continue
		}
		if resultType != nil {
			fmt.Println(resultType.String())
		}
	}
}
