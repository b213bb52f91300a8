package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nhatthm/brokenlinks/internal/app/cli"
)

const (
	// envPrefix is the prefix of the environment variables, for example BROKENLINKS_PARALLEL=4.
	envPrefix = "BROKENLINKS"

	// defaultNumWorkers is the default value for number of workers.
	defaultNumWorkers = 10
	// defaultMaxDepth is the default number of links followed from a seed.
	defaultMaxDepth = 4
	// defaultTimeout is the default timeout for requesting an url.
	defaultTimeout = 10 * time.Second
	// defaultReportDir is the default directory of the report files.
	defaultReportDir = "."

	examples = `  Audit all the sites in path/to/file.txt:
    brokenlinks -p 24 -f path/to/file.txt

  Audit the sites in arguments, following 2 links from each seed:
    brokenlinks -d 2 example.org https://example.com/docs/

  Audit the sites in stdin without saving the reports:
    echo -n "example.org" | brokenlinks -o "" --no-pretty

  Audit with timeout, configured from the environment:
    BROKENLINKS_TIMEOUT=5s brokenlinks example.org`
)

// runner runs the application with the configuration and the input sources.
type runner func(cfg cli.Config, inputSources ...any) cli.ExitCode

func main() {
	os.Exit(runMain(os.Args[1:]))
}

func runMain(args []string) int {
	// A missing .env file is fine, the environment and the flags are used instead.
	_ = godotenv.Load() // nolint: errcheck

	code := cli.CodeOK

	cmd := newRootCommand(viper.New(), os.Stdin, func(cfg cli.Config, inputSources ...any) cli.ExitCode {
		code = cli.Run(cfg, inputSources...)

		return code
	})

	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		return int(cli.CodeErrBadArgs)
	}

	return int(code)
}

// newRootCommand creates the command that audits the sites of the seeds.
//
// Every flag can also be set with an environment variable, the name is the flag name in upper case with the envPrefix, for example
// --output-dir is BROKENLINKS_OUTPUT_DIR. The flags take precedence over the environment.
func newRootCommand(v *viper.Viper, stdin *os.File, run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brokenlinks [flags] [seed1 seed2 ... seedN]",
		Short: "Find the broken links of websites",
		Long: `Crawl websites from their seeds and report the links that respond with not found.

Only the links on the host of the seed are followed. The seeds can be with or without scheme, but must have a hostname. If the
scheme is missing, default to https. When no seed is provided, they are read from the input file, or from stdin when it is
piped, one on each line.

The report of every site is printed as a JSON array and saved to
<output-dir>/brokenlinks_<host>_<YYYY-MM-DD_HH-MM-SS>.log.`,
		Example:      examples,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromViper(v)
			cfg.OutWriter = cmd.OutOrStdout()
			cfg.ErrWriter = cmd.ErrOrStderr()

			run(cfg, args, v.GetString("file"), pipeFromStdIn(stdin))

			return nil
		},
	}

	registerFlags(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("quiet", "verbose")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cobra.CheckErr(v.BindPFlags(cmd.Flags()))

	return cmd
}

// registerFlags registers all the flags.
func registerFlags(flags *pflag.FlagSet) {
	flags.StringP("file", "f", "", "path to the input file that contains a list of seeds, separated by '\\n'. It is used if no seeds are provided")
	flags.IntP("parallel", "p", defaultNumWorkers, "number of sites audited in parallel")
	flags.IntP("depth", "d", defaultMaxDepth, "number of links followed from a seed, 0 only checks the seed")
	flags.DurationP("timeout", "t", defaultTimeout, `timeout for requesting an url, in the form "72h3m0.5s"`)
	flags.String("user-agent", "", "user agent of the requests, default to a desktop browser")
	flags.StringP("output-dir", "o", defaultReportDir, `directory of the report files, "" to disable the files`)
	flags.Bool("no-pretty", false, "disable pretty output")
	flags.BoolP("quiet", "q", false, "print out the results only, as soon as they are ready")
	flags.BoolP("verbose", "v", false, "print out all the log messages")
	flags.Bool("log-json", false, "print out the log messages as JSON lines")
}

// configFromViper builds the application configuration from the flags and the environment.
func configFromViper(v *viper.Viper) cli.Config {
	cfg := cli.Config{
		NumWorkers:     v.GetInt("parallel"),
		MaxDepth:       v.GetInt("depth"),
		Timeout:        v.GetDuration("timeout"),
		UserAgent:      v.GetString("user-agent"),
		PrettyOutput:   !v.GetBool("no-pretty"),
		ReportDir:      v.GetString("output-dir"),
		VerbosityLevel: cli.VerbosityLevelInfo,
		LogJSON:        v.GetBool("log-json"),
	}

	if v.GetBool("quiet") {
		cfg.VerbosityLevel = cli.VerbosityLevelSilent
	} else if v.GetBool("verbose") {
		cfg.VerbosityLevel = cli.VerbosityLevelDebug
	}

	return cfg
}

// Detect if stdin is piped from another process.
func pipeFromStdIn(in *os.File) io.ReadCloser {
	fi, err := in.Stat()
	if err != nil {
		// Just ignore because we do not know if it is a pipe or not.
		return nil
	}

	if (fi.Mode() & os.ModeNamedPipe) != 0 {
		return io.NopCloser(in)
	}

	return nil
}
