package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	envssm "github.com/byu-oit/env-ssm"
	"github.com/byu-oit/env-ssm/internal/logger"
	"github.com/byu-oit/env-ssm/ssmstore"
	"github.com/byu-oit/env-ssm/store"
)

// newStore builds the parameter store client; tests swap it for an in-memory store.
var newStore = func(ctx context.Context, region string) (store.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	return ssmstore.NewDefault(ctx, opts...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Environ(), os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "env-ssm: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type sourceFlags struct {
	paths      []string
	delimiter  string
	region     string
	noStore    bool
	dotenv     string
	tfvar      string
	processEnv bool
	processSet bool
	workDir    string
	verbose    bool
}

func run(ctx context.Context, args, environ []string, stdout, stderr io.Writer) error {
	app := kingpin.New("env-ssm", "Resolve configuration from SSM Parameter Store, .env, .tfvars and the environment")
	app.Writer(stdout)
	app.ErrorWriter(stderr)
	app.Terminate(nil)

	var f sourceFlags
	app.Flag("path", "Parameter store path to query (repeatable)").Short('p').StringsVar(&f.paths)
	app.Flag("delimiter", "Default path delimiter").StringVar(&f.delimiter)
	app.Flag("region", "AWS region of the parameter store").StringVar(&f.region)
	app.Flag("no-store", "Do not query the parameter store").BoolVar(&f.noStore)
	app.Flag("dotenv", `Dotenv file to read ("false" disables it)`).StringVar(&f.dotenv)
	app.Flag("tfvar", "Tfvars file to read").StringVar(&f.tfvar)
	app.Flag("process-env", "Include the process environment").Default("true").IsSetByUser(&f.processSet).BoolVar(&f.processEnv)
	app.Flag("workdir", "Directory relative file paths resolve against").StringVar(&f.workDir)
	app.Flag("verbose", "Log resolution steps to stderr").Short('v').BoolVar(&f.verbose)

	dump := app.Command("dump", "Print the merged configuration")
	dumpFormat := dump.Flag("format", "Output format").Short('f').Default("json").Enum("json", "yaml", "dotenv")
	dumpMask := dump.Flag("mask", "Dotted key whose value is masked (repeatable)").Strings()

	get := app.Command("get", "Print a single value")
	getKey := get.Arg("key", "Key to read; dotted keys walk nested values").Required().String()
	getAs := get.Flag("as", "Type to coerce the value to").Default("string").Enum("string", "bool", "number", "port", "json", "url")
	getRequired := get.Flag("required", "Fail when the key is missing").Bool()
	var getDefaultSet bool
	getDefault := get.Flag("default", "Value used when the key is missing").IsSetByUser(&getDefaultSet).String()

	command, err := app.Parse(args)
	if err != nil {
		return err
	}
	// --help and --version complete without a command
	if command == "" {
		return nil
	}

	cfg, err := load(ctx, f, envssm.EnvironMap(environ), stderr)
	if err != nil {
		return err
	}

	switch command {
	case dump.FullCommand():
		return writeDump(stdout, cfg, *dumpFormat, *dumpMask)
	case get.FullCommand():
		c := cfg.Get(*getKey).RequiredIf(*getRequired)
		if getDefaultSet {
			c = c.Default(*getDefault)
		}
		return writeValue(stdout, c, *getAs)
	}
	return fmt.Errorf("unknown command %q", command)
}

func load(ctx context.Context, f sourceFlags, environ map[string]string, stderr io.Writer) (*envssm.Container, error) {
	opts := envssm.Options{
		Paths:         envssm.Paths(f.paths...),
		PathDelimiter: f.delimiter,
		Environ:       environ,
		WorkDir:       f.workDir,
	}
	if f.processSet {
		opts.ProcessEnv = envssm.Bool(f.processEnv)
	}
	if f.dotenv != "" {
		opts.Dotenv = envssm.ParseFileSource(f.dotenv)
	}
	if f.tfvar != "" {
		opts.Tfvar = envssm.ParseFileSource(f.tfvar)
	}
	if f.verbose {
		l := logger.NewConsole(stderr, zerolog.DebugLevel)
		opts.Logger = &l
	}

	if f.noStore && len(f.paths) > 0 {
		return nil, fmt.Errorf("--path cannot be combined with --no-store")
	}
	_, envPaths := environ[envssm.PathsKey]
	if !f.noStore && (len(f.paths) > 0 || envPaths) {
		client, err := newStore(ctx, f.region)
		if err != nil {
			return nil, err
		}
		opts.Store = client
	}

	return envssm.Load(ctx, opts)
}

func writeDump(w io.Writer, cfg *envssm.Container, format string, secretKeys []string) error {
	switch format {
	case "yaml":
		out, err := yaml.Marshal(cfg.Masked(secretKeys...))
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "dotenv":
		out, err := godotenv.Marshal(envssm.NewContainer(cfg.Masked(secretKeys...)).Flatten())
		if err != nil {
			return fmt.Errorf("encoding dotenv: %w", err)
		}
		_, err = fmt.Fprintln(w, out)
		return err
	default:
		_, err := fmt.Fprintln(w, cfg.PrettyString(secretKeys...))
		return err
	}
}

func writeValue(w io.Writer, c envssm.Coercion, as string) error {
	var (
		out string
		err error
	)
	switch as {
	case "bool":
		var b bool
		b, err = c.AsBool()
		out = strconv.FormatBool(b)
	case "number":
		var n float64
		n, err = c.AsNumber()
		out = strconv.FormatFloat(n, 'f', -1, 64)
	case "port":
		var p int
		p, err = c.AsPortNumber()
		out = strconv.Itoa(p)
	case "json":
		var v any
		if v, err = c.AsJSONObject(); err == nil {
			var data []byte
			data, err = json.MarshalIndent(v, "", "  ")
			out = string(data)
		}
	case "url":
		out, err = c.AsURLString()
	default:
		out, err = c.AsString()
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
