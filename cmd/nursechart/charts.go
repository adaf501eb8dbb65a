package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/nursechart/internal/core"
	"github.com/joseph-ayodele/nursechart/internal/core/ocr"
	"github.com/joseph-ayodele/nursechart/internal/repository"
	"github.com/joseph-ayodele/nursechart/internal/schema"
)

type runOpts struct {
	output    string
	looseTemp bool
	persist   bool
	source    string
}

func (o *runOpts) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "output file, or directory for <name>_results.json (default stdout)")
	f.BoolVar(&o.looseTemp, "loose-temp", false, "scan the whole text for temperatures, not only labelled ones")
	f.BoolVar(&o.persist, "persist", false, "store results in the configured database")
}

func newParseCmd(a *app) *cobra.Command {
	o := &runOpts{}
	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Parse chart text files (or stdin) into structured, validated results",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				args = []string{"-"}
			}
			if err := checkOutput(o.output, len(args)); err != nil {
				return err
			}

			var db *repository.DB
			if o.persist {
				var err error
				if db, err = a.openDB(ctx); err != nil {
					return err
				}
				defer db.Close()
			}
			p := a.processor(db, o.looseTemp)

			invalid := false
			for _, path := range args {
				text, err := readInput(path, cmd.InOrStdin())
				if err != nil {
					return err
				}
				source := path
				if path == "-" {
					source = o.sourceOr("stdin")
				}
				var res *core.Result
				if o.persist {
					res, err = p.ProcessText(ctx, source, string(text))
				} else {
					res, err = p.Analyze(ctx, source, string(text))
				}
				if err != nil {
					return fmt.Errorf("process %s: %w", source, err)
				}
				if err := emit(a.logger, cmd.OutOrStdout(), o.output, path, res); err != nil {
					return err
				}
				invalid = invalid || !res.ValidationResults.IsValid
			}
			if invalid {
				return errInvalidChart
			}
			return nil
		},
	}
	o.bind(cmd)
	cmd.Flags().StringVar(&o.source, "source", "", "source label for stdin input")
	return cmd
}

func (o *runOpts) sourceOr(def string) string {
	if o.source != "" {
		return o.source
	}
	return def
}

func newOCRCmd(a *app) *cobra.Command {
	o := &runOpts{}
	var textOnly bool
	cmd := &cobra.Command{
		Use:   "ocr <image...>",
		Short: "Run tesseract on chart images and process the recognised text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if textOnly {
				x := ocr.NewExtractor(ocr.ConfigFromCommon(a.cfg.OCR), a.logger)
				for _, path := range args {
					res, err := x.Extract(ctx, path)
					if err != nil {
						return fmt.Errorf("ocr %s: %w", path, err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), res.Text)
				}
				return nil
			}
			if err := checkOutput(o.output, len(args)); err != nil {
				return err
			}

			var db *repository.DB
			if o.persist {
				var err error
				if db, err = a.openDB(ctx); err != nil {
					return err
				}
				defer db.Close()
			}
			p := a.processor(db, o.looseTemp)

			invalid := false
			for _, path := range args {
				res, err := p.ProcessImage(ctx, path)
				if err != nil {
					return fmt.Errorf("process %s: %w", path, err)
				}
				if err := emit(a.logger, cmd.OutOrStdout(), o.output, path, res); err != nil {
					return err
				}
				invalid = invalid || !res.ValidationResults.IsValid
			}
			if invalid {
				return errInvalidChart
			}
			return nil
		},
	}
	o.bind(cmd)
	cmd.Flags().BoolVar(&textOnly, "text-only", false, "print the recognised text and stop")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <chart.json|->",
		Short: "Validate a structured chart JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			c, dropped, err := schema.DecodeChart(raw, a.logger)
			if err != nil {
				return err
			}
			report := a.validator().Validate(c)
			if dropped == nil {
				dropped = []string{}
			}
			if err := writeJSON(cmd.OutOrStdout(), map[string]any{
				"validation_results": report,
				"dropped":            dropped,
			}); err != nil {
				return err
			}
			if !report.IsValid {
				return errInvalidChart
			}
			return nil
		},
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}
