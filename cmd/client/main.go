// Command client is a terminal front end for the auth API. It keeps the login
// state in a local file so it survives between invocations.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"authdesk/internal/client"
)

const usage = `usage: client [flags] <command>

commands:
  signup   create an account and log in
  login    log in with email and password
  logout   forget the stored token
  status   print whether you are logged in

flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	defaultStorage, _ := client.DefaultStoragePath()
	apiURL := fs.String("api", envOr("AUTH_API_URL", "http://localhost:4001"), "auth API base URL")
	storagePath := fs.String("storage", defaultStorage, "file holding the local login state")
	email := fs.String("email", "", "email address (prompted when empty)")
	timeout := fs.Duration("timeout", 15*time.Second, "request timeout")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || *storagePath == "" {
		fs.Usage()
		return 2
	}

	state := client.NewAuthState(client.NewFileStorage(*storagePath))
	session := client.NewSession(client.Dial(*apiURL), state)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := state.Init(ctx); err != nil {
		fmt.Fprintf(stderr, "warning: %v\n", err)
	}

	in := bufio.NewReader(stdin)
	p := &prompter{in: in, out: stdout, stdin: stdin}

	switch fs.Arg(0) {
	case "status":
		fmt.Fprintln(stdout, state.Status())
		return 0

	case "logout":
		if err := session.Logout(ctx); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, "Logged out")
		return 0

	case "login":
		form := client.LoginForm{
			Email:    p.line("Email: ", *email),
			Password: p.secret("Password: "),
		}
		if _, err := session.Login(ctx, form); err != nil {
			fmt.Fprintln(stderr, client.ErrorMessage(err, client.MsgLoginFailed))
			return 1
		}
		fmt.Fprintln(stdout, "Login successful")
		return 0

	case "signup":
		form := client.SignupForm{
			Email:           p.line("Email: ", *email),
			Password:        p.secret("Password: "),
			ConfirmPassword: p.secret("Confirm Password: "),
		}
		if _, err := session.Signup(ctx, form); err != nil {
			fmt.Fprintln(stderr, client.ErrorMessage(err, client.MsgSignupFailed))
			return 1
		}
		fmt.Fprintln(stdout, "Signup successful")
		return 0

	default:
		fs.Usage()
		return 2
	}
}

type prompter struct {
	in    *bufio.Reader
	out   io.Writer
	stdin io.Reader
}

func (p *prompter) line(label, preset string) string {
	if preset != "" {
		return preset
	}
	fmt.Fprint(p.out, label)
	s, _ := p.in.ReadString('\n')
	return strings.TrimSpace(s)
}

// secret reads without echo when stdin is a terminal, and a plain line otherwise.
func (p *prompter) secret(label string) string {
	if f, ok := p.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, label)
		b, _ := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		return string(b)
	}
	return p.line(label, "")
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
