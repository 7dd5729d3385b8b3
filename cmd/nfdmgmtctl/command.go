// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/nfdmgmt/lib/process"
)

// Command is one node of the command tree.
type Command struct {
	Name    string
	Summary string

	// Usage overrides the synthesized usage line.
	Usage string

	// Flags registers the command's flags on a fresh set. Nil means the
	// command takes none.
	Flags func(flags *pflag.FlagSet)

	Subcommands []*Command

	// Run receives the positional arguments left after flag parsing.
	Run func(args []string) error

	parent *Command
}

// Execute parses args and runs the matching command.
func (c *Command) Execute(args []string, help io.Writer) error {
	if c.Flags != nil {
		flags := pflag.NewFlagSet(c.fullName(), pflag.ContinueOnError)
		flags.SetOutput(io.Discard)
		// Flags after a subcommand name belong to the subcommand.
		flags.SetInterspersed(len(c.Subcommands) == 0)
		c.Flags(flags)
		if err := flags.Parse(args); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				c.printHelp(help)
				return nil
			}
			return process.Usagef("%v\n\nRun '%s --help' for usage.", err, c.fullName())
		}
		args = flags.Args()
	}
	if len(args) > 0 && isHelp(args[0]) {
		c.printHelp(help)
		return nil
	}

	if len(c.Subcommands) > 0 {
		if len(args) == 0 {
			c.printHelp(help)
			return process.Usagef("%s: command required", c.fullName())
		}
		for _, sub := range c.Subcommands {
			if sub.Name == args[0] {
				sub.parent = c
				return sub.Execute(args[1:], help)
			}
		}
		return process.Usagef("unknown command %q\n\nRun '%s --help' for usage.", args[0], c.fullName())
	}
	return c.Run(args)
}

func (c *Command) printHelp(w io.Writer) {
	if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}
	switch {
	case c.Usage != "":
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	case len(c.Subcommands) > 0:
		fmt.Fprintf(w, "Usage:\n  %s [flags] <command>\n", c.fullName())
	default:
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", c.fullName())
	}
	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		tw.Flush()
	}
	if c.Flags != nil {
		flags := pflag.NewFlagSet(c.fullName(), pflag.ContinueOnError)
		c.Flags(flags)
		var defaults strings.Builder
		flags.SetOutput(&defaults)
		flags.PrintDefaults()
		if defaults.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", defaults.String())
		}
	}
}

func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func isHelp(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
