package wmbuspipe

import (
	"bufio"
	"errors"
	"io"
	"os"

	"vawter.tech/stopper"
)

// lineResult is one read from the consumer's output. A final partial line
// arrives as text before the error that ended the stream.
type lineResult struct {
	text string
	err  error
}

// readLines feeds out with the lines of r until the stream ends or sctx
// starts stopping. Reads block, so the caller unblocks a stuck reader by
// closing r.
func readLines(sctx *stopper.Context, r io.Reader, out chan<- lineResult) {
	sctx.Go(func(sctx *stopper.Context) error {
		br := bufio.NewReader(r)

		send := func(res lineResult) bool {
			select {
			case out <- res:
				return true
			case <-sctx.Stopping():
				return false
			}
		}

		for {
			text, err := br.ReadString('\n')
			if text != "" && !send(lineResult{text: text}) {
				return nil
			}
			if err != nil {
				if errors.Is(err, os.ErrClosed) {
					err = io.EOF
				}
				send(lineResult{err: err})
				return nil
			}
		}
	})
}
