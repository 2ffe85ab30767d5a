package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gemcheck/internal/checker"
	"gemcheck/internal/config"
	"gemcheck/internal/gemini"
	"gemcheck/internal/logging"

	"github.com/spf13/cobra"
)

// errCheckFailed is returned in --strict mode when the check did not succeed.
// The report has already been printed, so main only sets the exit status.
var errCheckFailed = errors.New("check failed")

type service interface {
	checker.Service
	Close() error
}

type serviceFactory func(ctx context.Context, apiKey string) (service, error)

func newGeminiService(ctx context.Context, apiKey string) (service, error) {
	return gemini.New(ctx, apiKey)
}

type flags struct {
	model      string
	prompt     string
	configPath string
	envFiles   []string
	timeout    time.Duration
	strict     bool
	verbose    bool
}

func newRootCmd(newService serviceFactory) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "gemcheck",
		Short: "Check Gemini API connectivity and quota",
		Long: "gemcheck lists the models available to your API key, sends one test prompt\n" +
			"and prints the response, or tells you whether the failure was a quota limit.\n\n" +
			"The key is read from GEMCHECK_API_KEY, GEMINI_API_KEY or GOOGLE_API_KEY,\n" +
			"a .env file in the working directory, or api_key in --config.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, f, newService)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.model, "model", "", "model to send the test prompt to (default "+checker.DefaultModel+")")
	fl.StringVar(&f.prompt, "prompt", "", "test prompt to send")
	fl.StringVar(&f.configPath, "config", "", "JSON or YAML config file with api_key, model and prompt")
	fl.StringSliceVar(&f.envFiles, "env-file", nil, "dotenv file(s) to load instead of ./.env")
	fl.DurationVar(&f.timeout, "timeout", 0, "overall deadline for the check, 0 means none")
	fl.BoolVar(&f.strict, "strict", false, "exit with status 1 when the check fails")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log diagnostics to stderr")
	return cmd
}

func runCheck(cmd *cobra.Command, f flags, newService serviceFactory) error {
	level := "warn"
	if f.verbose {
		level = "debug"
	}
	log := logging.New(logging.Config{Level: level, Output: cmd.ErrOrStderr()})

	settings, err := config.Resolve(config.Options{
		ConfigPath: f.configPath,
		EnvFiles:   f.envFiles,
	})
	if err != nil {
		return err
	}
	log.Debug("credential resolved", "source", settings.KeySource)

	ctx := cmd.Context()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	newChecker := func(svc checker.Service) *checker.Checker {
		return checker.New(svc,
			checker.WithModel(valueOrDefault(f.model, settings.Model)),
			checker.WithPrompt(valueOrDefault(f.prompt, settings.Prompt)),
			checker.WithOutput(cmd.OutOrStdout()),
		)
	}

	svc, err := newService(ctx, settings.APIKey)
	if err != nil {
		// Client setup failures are reported like any other failed check.
		outcome := newChecker(nil).ReportFailure(fmt.Errorf("failed to initialize Gemini client: %w", err))
		return finish(f, outcome)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn("closing client", "err", err)
		}
	}()

	c := newChecker(svc)

	log.Debug("running check", "model", c.Model(), "timeout", f.timeout)
	outcome := c.Run(ctx)
	log.Debug("check finished", "outcome", outcome.String())
	return finish(f, outcome)
}

func finish(f flags, outcome checker.Outcome) error {
	if f.strict && outcome != checker.OutcomeSuccess {
		return errCheckFailed
	}
	return nil
}

func valueOrDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func execute(args []string, stdout, stderr io.Writer, newService serviceFactory) int {
	cmd := newRootCmd(newService)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr, newGeminiService))
}
