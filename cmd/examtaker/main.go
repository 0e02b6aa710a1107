package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/lshigami/examroom/internal/client"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/logger"
	"github.com/lshigami/examroom/internal/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	api  *client.Client
	in   io.Reader
	out  io.Writer
	exam *dto.StudentExamResponse
}

func main() {
	logger.Init("warn", true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &commandLine{in: os.Stdin, out: os.Stdout}
	if err := cli.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("examtaker failed")
	}
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("examtaker", flag.ContinueOnError)
	server := fs.String("server", "http://localhost:8080", "Base URL of the examroom API.")
	email := fs.String("email", "", "Student email. The password will be prompted next.")
	examID := fs.Uint("exam", 0, "ID of the exam to take.")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	if *email == "" || *examID == 0 {
		fs.Usage()
		return errHelp
	}

	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return errHelp
	}

	cli.api = client.New(*server, nil)
	if _, err := cli.api.Login(ctx, *email, string(pwd)); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return cli.takeExam(ctx, uint(*examID))
}

func (cli *commandLine) takeExam(ctx context.Context, examID uint) error {
	exam, err := cli.api.GetExam(ctx, examID)
	if err != nil {
		return fmt.Errorf("load exam: %w", err)
	}
	sort.SliceStable(exam.Questions, func(i, j int) bool {
		return exam.Questions[i].Position < exam.Questions[j].Position
	})
	cli.exam = exam

	started, err := cli.api.StartExam(ctx, examID)
	if err != nil {
		return fmt.Errorf("start exam: %w", err)
	}

	ids := make([]uint, len(exam.Questions))
	for i, q := range exam.Questions {
		ids[i] = q.ID
	}
	answers := session.NewAnswerStore(ids)
	if n := answers.Load(started.Answers); n > 0 {
		fmt.Fprintf(cli.out, "Restored %d saved answers.\n", n)
	}

	// count from the server's remaining seconds so local clock skew does not matter
	now := time.Now()
	countdown := session.NewCountdown(now.Add(time.Duration(started.RemainingSeconds)*time.Second), now)
	attempt := session.NewAttempt(answers, countdown, func(ctx context.Context, batch []dto.AnswerInput) (*dto.SubmissionResponse, error) {
		return cli.api.Submit(ctx, examID, batch)
	})

	fmt.Fprintf(cli.out, "%s (%s) - %d questions, %d points, %s left\n",
		exam.Title, exam.Subject, len(exam.Questions), exam.MaxScore, formatRemaining(countdown.Remaining()))
	cli.printQuestions(answers)
	fmt.Fprintln(cli.out, "Commands: <n> <A-D>, flag <n>, list, submit")

	type outcome struct {
		res *dto.SubmissionResponse
		err error
	}
	finished := make(chan outcome, 1)
	go func() {
		res, err := attempt.Run(ctx, cli.warn)
		finished <- outcome{res, err}
	}()

	stop := make(chan struct{})
	defer close(stop)
	lines := readLines(stop, cli.in)

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				// input closed: hand in what we have
				lines = nil
				if _, err := attempt.Submit(ctx); err != nil {
					return fmt.Errorf("submit: %w", err)
				}
				continue
			}
			if cli.handle(answers, line) {
				if _, err := attempt.Submit(ctx); err != nil {
					return fmt.Errorf("submit: %w", err)
				}
			}
		case got := <-finished:
			if got.err != nil {
				return fmt.Errorf("submit: %w", got.err)
			}
			if attempt.Forced() {
				fmt.Fprintln(cli.out, "Time is up, your answers were submitted automatically.")
			}
			cli.printResult(got.res)
			return nil
		}
	}
}

// readLines feeds r line by line until EOF or until stop is closed.
func readLines(stop <-chan struct{}, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
	}()
	return lines
}

// handle applies one command and reports whether the student asked to submit.
func (cli *commandLine) handle(answers *session.AnswerStore, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToLower(fields[0]) {
	case "submit":
		return true
	case "list":
		cli.printQuestions(answers)
	case "flag":
		if len(fields) != 2 {
			fmt.Fprintln(cli.out, "usage: flag <n>")
			return false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Fprintln(cli.out, "usage: flag <n>")
			return false
		}
		on, err := answers.ToggleFlag(n - 1)
		if err != nil {
			fmt.Fprintln(cli.out, err)
			return false
		}
		fmt.Fprintf(cli.out, "question %d flagged: %t\n", n, on)
	default:
		n, err := strconv.Atoi(fields[0])
		if err != nil || len(fields) != 2 {
			fmt.Fprintln(cli.out, "unknown command, try: <n> <A-D>, flag <n>, list, submit")
			return false
		}
		id, err := answers.QuestionAt(n - 1)
		if err != nil {
			fmt.Fprintln(cli.out, err)
			return false
		}
		if err := answers.Select(id, strings.ToUpper(fields[1])); err != nil {
			fmt.Fprintln(cli.out, err)
			return false
		}
		fmt.Fprintf(cli.out, "question %d: %s\n", n, strings.ToUpper(fields[1]))
	}
	return false
}

func (cli *commandLine) printQuestions(answers *session.AnswerStore) {
	for i, q := range cli.exam.Questions {
		mark := " "
		if answers.IsFlagged(i) {
			mark = "*"
		}
		choice, _ := answers.Choice(q.ID)
		if choice == "" {
			choice = "-"
		}
		fmt.Fprintf(cli.out, "%s%2d. [%s] (%d pt) %s\n", mark, i+1, choice, q.Points, q.Content)
		for _, label := range []string{"A", "B", "C", "D"} {
			fmt.Fprintf(cli.out, "      %s) %s\n", label, q.Options[label])
		}
	}
}

// warn prints the remaining time every minute and every second of the last ten.
func (cli *commandLine) warn(remaining int64) {
	if remaining > 0 && (remaining%60 == 0 || remaining <= 10) {
		fmt.Fprintf(cli.out, "%s left\n", formatRemaining(remaining))
	}
}

func (cli *commandLine) printResult(res *dto.SubmissionResponse) {
	score := 0
	if res.Score != nil {
		score = *res.Score
	}
	fmt.Fprintf(cli.out, "Submitted. Score: %d/%d (%s)\n", score, cli.exam.MaxScore, res.Status)
}

func formatRemaining(seconds int64) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
