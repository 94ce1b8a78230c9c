package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/spf13/cobra"
)

// commentPrefix starts comment lines in the imported rule files.
const commentPrefix = "!"

// listCmd returns the command printing the rules of the list.
func listCmd(flags *globalFlags, logOut io.Writer) (c *cobra.Command) {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the rules of the list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			m, err := newManager(cmd.Context(), flags, logOut)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range m.AllRules() {
				_, err = fmt.Fprintln(out, formatRule(r))
				if err != nil {
					return fmt.Errorf("writing rule: %w", err)
				}
			}

			return nil
		},
	}
}

// formatRule returns the line for r in the output of the list command.
func formatRule(r userrules.Rule) (s string) {
	if r.Enabled {
		return "[x] " + r.Text
	}

	return "[ ] " + r.Text
}

// addCmd returns the command adding rules to the end of the list.
func addCmd(flags *globalFlags, logOut io.Writer) (c *cobra.Command) {
	var disabled, override bool

	c = &cobra.Command{
		Use:   "add <rule>...",
		Short: "Add rules to the end of the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			m, err := newManager(cmd.Context(), flags, logOut)
			if err != nil {
				return err
			}

			rules := make([]userrules.Rule, 0, len(args))
			for _, text := range args {
				rules = append(rules, userrules.Rule{
					Text:    text,
					Enabled: !disabled,
				})
			}

			if len(rules) == 1 {
				return m.Add(cmd.Context(), rules[0], override)
			}

			return m.AddRules(cmd.Context(), rules, override)
		},
	}

	c.Flags().BoolVar(&disabled, "disabled", false, "add the rules disabled")
	c.Flags().BoolVar(&override, "override", false, "replace the rules with the same text")

	return c
}

// modifyCmd returns the command replacing a rule in place.
func modifyCmd(flags *globalFlags, logOut io.Writer) (c *cobra.Command) {
	var disabled bool

	c = &cobra.Command{
		Use:   "modify <old-rule> <new-rule>",
		Short: "Replace a rule keeping its position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			m, err := newManager(cmd.Context(), flags, logOut)
			if err != nil {
				return err
			}

			return m.ModifyRule(cmd.Context(), args[0], userrules.Rule{
				Text:    args[1],
				Enabled: !disabled,
			})
		},
	}

	c.Flags().BoolVar(&disabled, "disabled", false, "make the new rule disabled")

	return c
}

// removeCmd returns the command removing rules by their text.
func removeCmd(flags *globalFlags, logOut io.Writer) (c *cobra.Command) {
	return &cobra.Command{
		Use:     "remove <rule>...",
		Aliases: []string{"rm"},
		Short:   "Remove rules from the list",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			m, err := newManager(cmd.Context(), flags, logOut)
			if err != nil {
				return err
			}

			for _, text := range args {
				err = m.RemoveRule(cmd.Context(), text)
				if err != nil {
					return fmt.Errorf("removing %q: %w", text, err)
				}
			}

			return nil
		},
	}
}

// clearCmd returns the command removing all rules from the list.
func clearCmd(flags *globalFlags, logOut io.Writer) (c *cobra.Command) {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all rules from the list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			m, err := newManager(cmd.Context(), flags, logOut)
			if err != nil {
				return err
			}

			return m.RemoveAllRules(cmd.Context())
		},
	}
}

// resetCmd returns the command replacing the list with the default rules.
func resetCmd(flags *globalFlags, logOut io.Writer) (c *cobra.Command) {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the list with the default rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			m, err := newManager(cmd.Context(), flags, logOut)
			if err != nil {
				return err
			}

			return m.Reset(cmd.Context())
		},
	}
}

// importCmd returns the command adding the rules from a text file.
func importCmd(flags *globalFlags, logOut io.Writer) (c *cobra.Command) {
	var override bool

	c = &cobra.Command{
		Use:   "import <file>",
		Short: "Add the rules from a text file, one rule per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			rules, err := readRules(args[0])
			if err != nil {
				return err
			}

			if len(rules) == 0 {
				return nil
			}

			m, err := newManager(cmd.Context(), flags, logOut)
			if err != nil {
				return err
			}

			return m.AddRules(cmd.Context(), rules, override)
		},
	}

	c.Flags().BoolVar(&override, "override", true, "replace the rules with the same text")

	return c
}

// readRules reads enabled rules from the file at path.  Blank lines and lines
// starting with "!" are skipped.
func readRules(path string) (rules []userrules.Rule, err error) {
	// #nosec G304 -- Trust the path given on the command line.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rules: %w", err)
	}
	defer func() { err = errors.WithDeferred(err, f.Close()) }()

	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), int(userrules.MaxRuleLen.Bytes()))
	for s.Scan() {
		text := strings.TrimSpace(s.Text())
		if text == "" || strings.HasPrefix(text, commentPrefix) {
			continue
		}

		rules = append(rules, userrules.NewRule(text))
	}

	err = s.Err()
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}

	return rules, nil
}
