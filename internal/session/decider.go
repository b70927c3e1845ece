package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wagiedev/recordrig-go/internal/trials"
)

// Decider reports whether the subject accepted the offer of a trial. It is
// consulted once per trial, after the decision interval.
type Decider interface {
	Decide(ctx context.Context, trial trials.Trial) (bool, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(ctx context.Context, trial trials.Trial) (bool, error)

// Decide calls f.
func (f DeciderFunc) Decide(ctx context.Context, trial trials.Trial) (bool, error) {
	return f(ctx, trial)
}

// AcceptAll accepts every offer.
var AcceptAll = DeciderFunc(func(context.Context, trials.Trial) (bool, error) {
	return true, nil
})

// PromptDecider asks the experimenter. Answers starting with "y" accept the
// offer; anything else declines it.
type PromptDecider struct {
	in  *bufio.Reader
	out io.Writer

	// pending holds a read left outstanding by a cancelled Decide.
	pending chan promptLine
}

type promptLine struct {
	text string
	err  error
}

// NewPromptDecider reads answers from in and writes prompts to out.
func NewPromptDecider(in io.Reader, out io.Writer) *PromptDecider {
	return &PromptDecider{in: bufio.NewReader(in), out: out}
}

// Decide prompts for one answer. It returns ctx.Err() as soon as ctx is
// cancelled, even while waiting for input.
func (p *PromptDecider) Decide(ctx context.Context, trial trials.Trial) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintf(p.out, "\nDid the subject approach feeder %d? (delivers reward if yes) [y/n]\n", trial.Feeder)

	if p.pending == nil {
		ch := make(chan promptLine, 1)

		go func() {
			text, err := p.in.ReadString('\n')
			ch <- promptLine{text: text, err: err}
		}()

		p.pending = ch
	}

	var line promptLine

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case line = <-p.pending:
		p.pending = nil
	}

	if line.err != nil && line.text == "" {
		return false, fmt.Errorf("read decision: %w", line.err)
	}

	answer := strings.ToLower(strings.TrimSpace(line.text))

	switch {
	case strings.HasPrefix(answer, "y"):
		return true, nil
	case strings.HasPrefix(answer, "n"):
		return false, nil
	default:
		fmt.Fprintln(p.out, "Input not recognized, defaulting to 'n'.")

		return false, nil
	}
}
