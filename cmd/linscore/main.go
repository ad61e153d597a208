// Command linscore scores, explains, inspects and evaluates linear model
// documents from the command line.
//
//	linscore score --model models/spam.json < instances.jsonl
//	linscore explain --model spam --config linscore.yaml -n 5 --features x.json
//	linscore inspect --model https://example.com/topics.json
//	linscore evaluate --model topics --data labelled.jsonl --roc roc.png
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// Exit codes by failure kind.
const (
	exitOK = iota
	exitFailure
	exitNotFound
	exitTooLarge
	exitMalformed
	exitUnknownType
	exitTimeout
	exitDegenerate
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := lserrors.SafeExecute("linscore", func() error {
		return newRootCommand(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "linscore:", err)
	}
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case lserrors.Is(err, lserrors.ErrModelNotFound):
		return exitNotFound
	case lserrors.Is(err, lserrors.ErrModelTooLarge):
		return exitTooLarge
	case lserrors.Is(err, lserrors.ErrModelMalformed):
		return exitMalformed
	case lserrors.Is(err, lserrors.ErrUnknownModelType):
		return exitUnknownType
	case lserrors.Is(err, lserrors.ErrLoadTimeout):
		return exitTimeout
	case lserrors.Is(err, lserrors.ErrNumericalDegenerate):
		return exitDegenerate
	default:
		return exitFailure
	}
}
