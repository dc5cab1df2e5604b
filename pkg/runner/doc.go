/*
Package runner implements the interactive query loop.

It reads one input string per line, decides membership with a
ports.Simulator, and reports each verdict through a pluggable IOHandler.
The loop stops on the sentinel words "exit" or "quit", on end of input, or
when its context is canceled.

# Usage

	r := runner.NewRunner(
		runner.WithEngine(engine),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
