package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/LinkerScript/SeamLang/astio"
	"github.com/LinkerScript/SeamLang/config"
	"github.com/LinkerScript/SeamLang/lower"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] module.seamb",
	Short: "Lower a resolved module to LLVM IR assembly",
	Long: `Lower reads a resolved Seam module, as serialized by the frontend
passes, and emits LLVM IR assembly. Output goes to the configured emit
directory unless -o is given; "-o -" writes to standard output.`,
	Args: cobra.ExactArgs(1),
	RunE: runLower,
}

func init() {
	lowerCmd.Flags().StringP("output", "o", "", `output path ("-" for stdout)`)
	lowerCmd.Flags().Int("word-size", 0, "target word size in bits, overriding seam.toml")
}

func runLower(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if ws, err := cmd.Flags().GetInt("word-size"); err == nil && ws != 0 {
		cfg.Target.WordSize = ws
	}

	in, err := os.Open(args[0])
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()
	mod, err := astio.Decode(in)
	if err != nil {
		return errors.Wrapf(err, "unable to decode resolved module %s", args[0])
	}

	gen, err := lower.NewGenerator(lower.Config{WordSize: cfg.Target.WordSize})
	if err != nil {
		return err
	}
	m, err := gen.Lower(mod)
	if err != nil {
		return err
	}

	out, err := cmd.Flags().GetString("output")
	if err != nil {
		return errors.WithStack(err)
	}
	if out == "-" {
		_, err := os.Stdout.WriteString(m.String())
		return errors.WithStack(err)
	}
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		if err := os.MkdirAll(cfg.Emit.Dir, 0o755); err != nil {
			return errors.WithStack(err)
		}
		out = filepath.Join(cfg.Emit.Dir, base+".ll")
	}
	if err := os.WriteFile(out, []byte(m.String()), 0o644); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, errors.WithStack(err)
	}
	if path != "" {
		return config.Load(path)
	}
	return config.LoadIfPresent(config.DefaultFile)
}
