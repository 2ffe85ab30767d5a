package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"google.golang.org/api/iterator"
)

const (
	DefaultModel  = "models/gemini-2.0-flash"
	DefaultPrompt = "Say a what skills a cse student need don't give options just say a list of skills i want to develop for my career"
)

const (
	SuccessMarker = "✅ API is working. Response:"
	QuotaMarker   = "❌ Quota exceeded (429 Too Many Requests). Please wait until it resets."
	FailureMarker = "⚠️ Something went wrong:"
)

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeQuotaExhausted
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeQuotaExhausted:
		return "quota_exhausted"
	default:
		return "failure"
	}
}

// Checker runs one end-to-end exercise of a Service and reports the result
// as human-readable lines.
type Checker struct {
	svc    Service
	model  string
	prompt string
	out    io.Writer

	successStyle lipgloss.Style
	quotaStyle   lipgloss.Style
	failureStyle lipgloss.Style
}

type Option func(*Checker)

func WithModel(model string) Option {
	return func(c *Checker) {
		if model != "" {
			c.model = model
		}
	}
}

func WithPrompt(prompt string) Option {
	return func(c *Checker) {
		if prompt != "" {
			c.prompt = prompt
		}
	}
}

// WithOutput redirects the report. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		if w != nil {
			c.out = w
		}
	}
}

func New(svc Service, opts ...Option) *Checker {
	c := &Checker{
		svc:    svc,
		model:  DefaultModel,
		prompt: DefaultPrompt,
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Non-terminal writers get an ASCII profile, so markers render as plain text.
	r := lipgloss.NewRenderer(c.out)
	c.successStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	c.quotaStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	c.failureStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	return c
}

func (c *Checker) Model() string  { return c.model }
func (c *Checker) Prompt() string { return c.prompt }

// Run lists the available models, sends the prompt once and reports the
// outcome. Errors are reported, never returned.
func (c *Checker) Run(ctx context.Context) Outcome {
	text, err := c.check(ctx)
	if err != nil {
		return c.reportError(err)
	}
	c.println(c.successStyle.Render(SuccessMarker))
	c.println(text)
	return OutcomeSuccess
}

// ReportFailure prints err the way Run would and returns its outcome. It is
// for failures that happen before the service exists, such as client setup.
func (c *Checker) ReportFailure(err error) Outcome {
	return c.reportError(err)
}

func (c *Checker) check(ctx context.Context) (string, error) {
	it := c.svc.ListModels(ctx)
	if it == nil {
		return "", errors.New("list models: no iterator returned")
	}
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", err
		}
		c.println(m.Name)
	}

	return c.svc.Generate(ctx, c.model, c.prompt)
}

func (c *Checker) reportError(err error) Outcome {
	if errors.Is(err, ErrQuotaExhausted) {
		c.println(c.quotaStyle.Render(QuotaMarker))
		c.println(err.Error())
		return OutcomeQuotaExhausted
	}
	c.println(c.failureStyle.Render(FailureMarker))
	c.println(err.Error())
	return OutcomeFailure
}

func (c *Checker) println(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}
