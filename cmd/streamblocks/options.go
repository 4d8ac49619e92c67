package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fwojciec/streamblocks"
	"github.com/fwojciec/streamblocks/builtin"
	"github.com/fwojciec/streamblocks/fs"
	"github.com/fwojciec/streamblocks/syntax"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML configuration file. Unset fields keep the flag
// defaults; flags given on the command line override the file.
type fileConfig struct {
	Syntax             string `yaml:"syntax"`
	Delimiter          string `yaml:"delimiter"`
	EmitTextDeltas     *bool  `yaml:"emit_text_deltas"`
	EmitBlockContent   *bool  `yaml:"emit_block_content"`
	EmitOriginalEvents *bool  `yaml:"emit_original_events"`
	MaxBlockSize       *int   `yaml:"max_block_size"`
	Schemas            string `yaml:"schemas"`
	Builtin            *bool  `yaml:"builtin"`
	Provider           string `yaml:"provider"`
	Model              string `yaml:"model"`
}

// loadConfig reads a YAML config file. Unknown keys are an error.
func loadConfig(path string) (fileConfig, error) {
	var fc fileConfig
	f, err := os.Open(path)
	if err != nil {
		return fc, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fc, fmt.Errorf("config %s: %w", path, err)
	}
	return fc, nil
}

// options holds the flags shared by every command.
type options struct {
	configPath   string
	syntaxName   string
	delimiter    string
	schemasDir   string
	builtin      bool
	maxBlockSize int
	noText       bool
	noContent    bool
	original     bool
	streamID     string
	verbose      bool
	metrics      bool
	provider     string
	model        string
}

func (o *options) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.configPath, "config", "", "YAML config file")
	f.StringVar(&o.syntaxName, "syntax", syntax.NameDelimiterPreamble, "block grammar: delimiter-preamble, delimiter-frontmatter, markdown-frontmatter")
	f.StringVar(&o.delimiter, "delimiter", syntax.DefaultDelimiter, "marker prefix for the delimiter grammars")
	f.StringVar(&o.schemasDir, "schemas", "", "directory of *.schema.json files defining block types")
	f.BoolVar(&o.builtin, "builtin", true, "register the built-in block types")
	f.IntVar(&o.maxBlockSize, "max-block-size", streamblocks.DefaultMaxBlockSize, "maximum block size in bytes")
	f.BoolVar(&o.noText, "no-text", false, "suppress text events")
	f.BoolVar(&o.noContent, "no-block-content", false, "suppress block content events")
	f.BoolVar(&o.original, "original", false, "pass upstream chunks through as original events")
	f.StringVar(&o.streamID, "stream-id", "", "stream identifier (default: random UUID)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log block rejections to stderr")
	f.BoolVar(&o.metrics, "metrics", false, "print Prometheus metrics to stderr on exit")
}

// resolve merges the config file into the options. Flags set on the
// command line win.
func (o *options) resolve(cmd *cobra.Command) error {
	if o.configPath == "" {
		return nil
	}
	fc, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}
	changed := cmd.Flags().Changed
	if fc.Syntax != "" && !changed("syntax") {
		o.syntaxName = fc.Syntax
	}
	if fc.Delimiter != "" && !changed("delimiter") {
		o.delimiter = fc.Delimiter
	}
	if fc.Schemas != "" && !changed("schemas") {
		o.schemasDir = fc.Schemas
	}
	if fc.Builtin != nil && !changed("builtin") {
		o.builtin = *fc.Builtin
	}
	if fc.MaxBlockSize != nil && !changed("max-block-size") {
		o.maxBlockSize = *fc.MaxBlockSize
	}
	if fc.EmitTextDeltas != nil && !changed("no-text") {
		o.noText = !*fc.EmitTextDeltas
	}
	if fc.EmitBlockContent != nil && !changed("no-block-content") {
		o.noContent = !*fc.EmitBlockContent
	}
	if fc.EmitOriginalEvents != nil && !changed("original") {
		o.original = *fc.EmitOriginalEvents
	}
	if fc.Provider != "" && !changed("provider") {
		o.provider = fc.Provider
	}
	if fc.Model != "" && !changed("model") {
		o.model = fc.Model
	}
	return nil
}

func (o *options) grammar() (streamblocks.Syntax, error) {
	switch o.syntaxName {
	case syntax.NameDelimiterPreamble:
		return syntax.NewDelimiterPreamble(o.delimiter), nil
	case syntax.NameDelimiterFrontmatter:
		return syntax.NewDelimiterFrontmatter(o.delimiter), nil
	default:
		return syntax.Parse(o.syntaxName)
	}
}

// registry builds the block type registry from the built-in types and
// the schema directory.
func (o *options) registry() (*streamblocks.Registry, error) {
	reg := streamblocks.NewRegistry()
	if o.builtin {
		if err := builtin.Register(reg); err != nil {
			return nil, err
		}
	}
	if o.schemasDir != "" {
		if _, err := fs.LoadSchemas(reg, o.schemasDir); err != nil {
			return nil, err
		}
	}
	if err := reg.AddGlobalValidator(streamblocks.UniqueBlockIDs()); err != nil {
		return nil, err
	}
	return reg, nil
}

func (o *options) processor(logger *slog.Logger) (*streamblocks.Processor, error) {
	syn, err := o.grammar()
	if err != nil {
		return nil, err
	}
	reg, err := o.registry()
	if err != nil {
		return nil, err
	}
	id := o.streamID
	if id == "" {
		id = uuid.NewString()
	}
	cfg := streamblocks.Config{
		Syntax:             syn,
		EmitTextDeltas:     !o.noText,
		EmitBlockContent:   !o.noContent,
		EmitOriginalEvents: o.original,
		MaxBlockSize:       o.maxBlockSize,
		StreamID:           id,
		Logger:             logger,
	}
	return streamblocks.NewProcessor(reg, cfg)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
