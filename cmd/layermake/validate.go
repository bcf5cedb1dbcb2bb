package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/szaher/layermake/internal/buildfile"
	"github.com/szaher/layermake/internal/validate"
)

func newValidateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the build file without probing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			var findings []*validate.Finding
			var checked int

			proj, err := loadProject(cmd.Context(), logger)
			if err != nil {
				var perr *buildfile.ParseError
				if !errors.As(err, &perr) {
					return err
				}
				msg := perr.Message
				if perr.Line > 0 {
					msg = fmt.Sprintf("line %d: %s", perr.Line, perr.Message)
				}
				findings = append(findings, &validate.Finding{
					File:    perr.File,
					Message: msg,
				})
			} else {
				findings = validate.Check(proj.file, proj.cfg.VarNames())
				checked = len(proj.file.Targets)
			}

			if len(findings) == 0 {
				switch format {
				case "json":
					out, err := validate.FormatJSON(nil)
					if err != nil {
						return err
					}
					fmt.Print(out)
				default:
					fmt.Printf("%s: %d targets, no findings\n", buildFile, checked)
				}
				return nil
			}

			switch format {
			case "json":
				out, err := validate.FormatJSON(findings)
				if err != nil {
					return err
				}
				fmt.Print(out)
			default:
				fmt.Fprint(os.Stderr, validate.FormatText(findings))
			}

			os.Exit(1)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format (text|json)")

	return cmd
}
