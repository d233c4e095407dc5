package session

import (
	"bufio"
	"fmt"
	"io"
)

// Plain reads lines from any io.Reader. Prompts go to out when out is not nil.
type Plain struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPlain creates a reader for pipes, files and tests.
func NewPlain(in io.Reader, out io.Writer) *Plain {
	return &Plain{scanner: bufio.NewScanner(in), out: out}
}

func (p *Plain) ReadLine(prompt string) (string, error) {
	if p.out != nil {
		fmt.Fprint(p.out, prompt)
	}
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.scanner.Text(), nil
}

func (p *Plain) Close() error {
	return nil
}
