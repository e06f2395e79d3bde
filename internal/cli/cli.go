// Package cli is the interactive terminal front end.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/resume-tailor/resume-tailor-go/internal/prompt"
)

// EndSentinel terminates multi-line input. It is matched case-insensitively.
const EndSentinel = "END"

// Generator is satisfied by generation.Service.
type Generator interface {
	CoverLetter(ctx context.Context, resumeText, jobDescription, model string) (string, error)
	ResizeGuidance(ctx context.Context, resumeText string, pages prompt.PageCount, model string) (string, error)
}

// Session reads inputs from in, prints results to out.
type Session struct {
	in    *bufio.Reader
	out   io.Writer
	gen   Generator
	model string
}

// New returns a session. An empty model selects the generator's default.
func New(in io.Reader, out io.Writer, gen Generator, model string) *Session {
	return &Session{in: bufio.NewReader(in), out: out, gen: gen, model: model}
}

// Inputs are the values collected from the terminal.
type Inputs struct {
	ResumeText     string
	JobDescription string
	TargetPages    int
}

// Run collects the inputs, then prints a cover letter and resizing guidance.
func (s *Session) Run(ctx context.Context) error {
	in, err := s.Collect()
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, "\n--- Generating Cover Letter ---")
	letter, err := s.gen.CoverLetter(ctx, in.ResumeText, in.JobDescription, s.model)
	if err != nil {
		return fmt.Errorf("generate cover letter: %w", err)
	}
	fmt.Fprintln(s.out, "\nGenerated Cover Letter:")
	fmt.Fprintln(s.out, letter)

	fmt.Fprintln(s.out, "\n--- Resume Resizing Guidance ---")
	guidance, err := s.gen.ResizeGuidance(ctx, in.ResumeText, prompt.Pages(in.TargetPages), s.model)
	if err != nil {
		return fmt.Errorf("resize guidance: %w", err)
	}
	fmt.Fprintln(s.out, "\nResume Resizing Guidance:")
	fmt.Fprintln(s.out, guidance)
	return nil
}

// Collect prompts for the resume, the job description and the page count.
func (s *Session) Collect() (*Inputs, error) {
	fmt.Fprintln(s.out, "=== Resume Tailoring Tool ===")

	resume, err := s.readBlock("\nPlease paste your resume text (type 'END' on a new line when finished):")
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	job, err := s.readBlock("\nPlease paste the job description (type 'END' on a new line when finished):")
	if err != nil {
		return nil, fmt.Errorf("read job description: %w", err)
	}
	pages, err := s.readPageCount()
	if err != nil {
		return nil, fmt.Errorf("read page count: %w", err)
	}
	return &Inputs{ResumeText: resume, JobDescription: job, TargetPages: pages}, nil
}

func (s *Session) readBlock(label string) (string, error) {
	fmt.Fprintln(s.out, label)
	var sb strings.Builder
	for {
		line, err := s.readLine()
		if err != nil {
			return "", err
		}
		if strings.ToUpper(strings.TrimSpace(line)) == EndSentinel {
			break
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

func (s *Session) readPageCount() (int, error) {
	for {
		fmt.Fprint(s.out, "\nEnter the target resume length (number of pages): ")
		line, err := s.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(s.out, "Invalid input. Please enter a number.")
			continue
		}
		if n <= 0 {
			fmt.Fprintln(s.out, "Please enter a positive number.")
			continue
		}
		return n, nil
	}
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned before io.ErrUnexpectedEOF.
func (s *Session) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
