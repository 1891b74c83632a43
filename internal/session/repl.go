package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

const maxLineBytes = 1 << 20

// Run reads commands from in until an exit command, end of input or ctx
// cancellation (an interrupt), writing prompts and responses to out.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		if _, err := fmt.Fprintf(out, "\n%s", Prompt); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			_, err := fmt.Fprintf(out, "\n%s\n", Goodbye)
			return err
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				_, err := fmt.Fprintf(out, "\n%s\n", Goodbye)
				return err
			}
			resp := s.Handle(line)
			if resp.Text != "" {
				if _, err := fmt.Fprintln(out, resp.Text); err != nil {
					return err
				}
			}
			if resp.Exit {
				return nil
			}
		}
	}
}
