// wirecheck decodes a payload against one of the catalog messages, prints
// the fields it carries and checks whether re-encoding reproduces the input.
//
// Input comes from --hex, --file or stdin. With --framed the input is a
// sequence of payloads, each preceded by a 4-byte little-endian length.
package main

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/anirudhraja/tagwire"
	"github.com/anirudhraja/tagwire/catalog"
	"github.com/anirudhraja/tagwire/internal/config"
	"github.com/anirudhraja/tagwire/registry"
	"github.com/anirudhraja/tagwire/schema"
	"github.com/anirudhraja/tagwire/wire"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// errMismatch is returned when a payload decodes but its canonical
// re-encoding differs.
var errMismatch = errors.New("canonical encoding differs from input")

type options struct {
	configPath      string
	message         string
	hexInput        string
	filePath        string
	framed          bool
	strict          bool
	list            bool
	preserveUnknown bool
	validateUTF8    bool
	recursionLimit  int
	logLevel        string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("wirecheck", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.configPath, "config", "", "path to a YAML config file (default: $"+config.EnvVar+")")
	flagSet.StringVarP(&opts.message, "message", "m", "", "message name, fully qualified or a unique suffix")
	flagSet.StringVar(&opts.hexInput, "hex", "", "payload as a hex string")
	flagSet.StringVarP(&opts.filePath, "file", "f", "", "read the payload from a file instead of stdin")
	flagSet.BoolVar(&opts.framed, "framed", false, "input is a sequence of 4-byte little-endian length-prefixed payloads")
	flagSet.BoolVar(&opts.strict, "strict", false, "fail when the canonical encoding differs from the input")
	flagSet.BoolVar(&opts.list, "list", false, "list the known messages and exit")
	flagSet.BoolVar(&opts.preserveUnknown, "preserve-unknown", false, "keep unknown fields and re-emit them")
	flagSet.BoolVar(&opts.validateUTF8, "validate-utf8", false, "reject string fields with invalid UTF-8")
	flagSet.IntVar(&opts.recursionLimit, "recursion-limit", 0, "maximum message nesting")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(flagSet, &opts, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	reg, err := catalog.New(registry.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	codec := tagwire.New(
		tagwire.WithRegistry(reg),
		tagwire.WithUnmarshalOptions(cfg.UnmarshalOptions()),
		tagwire.WithLogger(logger),
	)

	if opts.list {
		for _, name := range codec.ListMessages() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}
	if opts.message == "" {
		return errors.New("--message is required")
	}

	data, err := readInput(&opts, stdin)
	if err != nil {
		return err
	}
	logger.Debug("read input", "bytes", len(data), "framed", opts.framed)

	if !opts.framed {
		return check(codec, stdout, opts.message, data, -1, opts.strict)
	}

	for frame := 0; len(data) > 0; frame++ {
		if len(data) < 4 {
			return fmt.Errorf("frame %d: %w: length prefix", frame, wire.ErrUnexpectedEOF)
		}
		n := int(binary.LittleEndian.Uint32(data))
		data = data[4:]
		fmt.Fprintf(stdout, "frame %d\n", frame)
		if err := check(codec, stdout, opts.message, data, n, opts.strict); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		data = data[n:]
	}
	return nil
}

// applyFlags overrides config values with the flags that were set.
func applyFlags(flagSet *pflag.FlagSet, opts *options, cfg *config.Config) {
	if flagSet.Changed("preserve-unknown") {
		cfg.Decode.PreserveUnknown = opts.preserveUnknown
	}
	if flagSet.Changed("validate-utf8") {
		cfg.Decode.ValidateUTF8 = opts.validateUTF8
	}
	if flagSet.Changed("recursion-limit") {
		cfg.Decode.RecursionLimit = opts.recursionLimit
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
}

func readInput(opts *options, stdin io.Reader) ([]byte, error) {
	switch {
	case opts.hexInput != "":
		cleaned := strings.Join(strings.Fields(opts.hexInput), "")
		data, err := hex.DecodeString(cleaned)
		if err != nil {
			return nil, fmt.Errorf("--hex: %w", err)
		}
		return data, nil
	case opts.filePath != "":
		return os.ReadFile(opts.filePath)
	default:
		return io.ReadAll(stdin)
	}
}

// check decodes a message and prints the report. A non-negative length
// limits the message to the first length bytes of buf.
func check(codec *tagwire.Codec, w io.Writer, message string, buf []byte, length int, strict bool) error {
	var (
		inst *wire.Instance
		err  error
	)
	input := buf
	if length >= 0 {
		inst, err = codec.UnmarshalLength(buf, length, message)
	} else {
		inst, err = codec.Unmarshal(buf, message)
	}
	if err != nil {
		return err
	}
	if length >= 0 {
		input = buf[:length]
	}

	fmt.Fprintf(w, "%s (%d bytes)\n", inst.Descriptor().Name, len(input))
	printInstance(w, inst, "  ")

	canonical := codec.Marshal(inst)
	match := string(canonical) == string(input)
	fmt.Fprintf(w, "canonical: %x\n", canonical)
	fmt.Fprintf(w, "match: %t\n", match)
	if strict && !match {
		return errMismatch
	}
	return nil
}

func printInstance(w io.Writer, inst *wire.Instance, indent string) {
	desc := inst.Descriptor()
	for _, o := range desc.Oneofs {
		if which := inst.WhichOneof(o.Name); which != "" {
			fmt.Fprintf(w, "%soneof %s: %s\n", indent, o.Name, which)
		}
	}

	for _, f := range inst.SetFields() {
		switch {
		case f.IsMap():
			for _, e := range inst.Entries(f.Name) {
				printValue(w, f, fmt.Sprintf("%s[%s]", f.Name, e.Key), e.Value, indent)
			}
		case f.IsList():
			for i, v := range inst.List(f.Name) {
				printValue(w, f, fmt.Sprintf("%s[%d]", f.Name, i), v, indent)
			}
		default:
			printValue(w, f, f.Name, inst.Get(f.Name), indent)
		}
	}

	if unknown := inst.Unknown(); len(unknown) > 0 {
		fmt.Fprintf(w, "%sunknown: %x\n", indent, unknown)
	}
}

func printValue(w io.Writer, f *schema.Field, label string, v wire.Value, indent string) {
	switch {
	case v.Type() == schema.TypeMessage:
		fmt.Fprintf(w, "%s%s: %s\n", indent, label, f.Message.Name)
		printInstance(w, v.Message(), indent+"  ")
	case v.Type() == schema.TypeEnum && f.Enum != nil:
		name := f.Enum.ValueName(v.Enum())
		if name == "" {
			name = "?"
		}
		fmt.Fprintf(w, "%s%s = %s (%d)\n", indent, label, name, v.Enum())
	case v.Type() == schema.TypeString:
		fmt.Fprintf(w, "%s%s = %q\n", indent, label, v.String())
	default:
		fmt.Fprintf(w, "%s%s = %s\n", indent, label, v)
	}
}
