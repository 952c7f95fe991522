package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"

	"groupchat/domain"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"CHAT_SERVER_ADDR,default=localhost:1234"`
	Username      string `env:"CHAT_USERNAME"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the connection lifecycle: username handshake, a concurrent
// receive printer, and the interactive input loop. Ordinary messages are
// sent as "username: body"; commands go out bare so the server can
// interpret them.
func run() (int, error) {
	// A .env file is optional for local runs.
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	stdin := bufio.NewScanner(os.Stdin)
	username := strings.TrimSpace(config.Username)
	for username == "" {
		color.Cyan.Println("Enter your username for the group chat:")
		if !stdin.Scan() {
			return exitOK, nil
		}
		username = strings.TrimSpace(stdin.Text())
	}

	conn, err := net.Dial("tcp", config.ServerAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	writer := bufio.NewWriter(conn)
	if err := sendLine(writer, username); err != nil {
		return exitRuntime, err
	}
	color.Green.Printf(">>> Connected to %s as %s\n", config.ServerAddress, username)

	// Receive printer runs alongside the input loop; when the server side
	// closes, it unblocks the process exit.
	done := make(chan struct{})
	go func() {
		defer close(done)
		reader := bufio.NewReader(conn)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			printLine(strings.TrimRight(line, "\r\n"))
		}
	}()

	for stdin.Scan() {
		text := stdin.Text()
		if text == "" {
			continue
		}

		out := text
		if !domain.IsCommand(text) {
			out = domain.Envelope{Sender: username, Body: text}.Line()
		}
		if err := sendLine(writer, out); err != nil {
			return exitRuntime, fmt.Errorf("connection lost: %w", err)
		}

		select {
		case <-done:
			color.Yellow.Println("Server closed the connection.")
			return exitOK, nil
		default:
		}
	}
	return exitOK, nil
}

func sendLine(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line + "\n"); err != nil {
		return err
	}
	return w.Flush()
}

// printLine colors server traffic so announcements and errors stand out
// from regular chat.
func printLine(line string) {
	switch {
	case strings.HasPrefix(line, "SERVER: Error:"):
		color.Red.Println(line)
	case strings.HasPrefix(line, "SERVER:"):
		color.Yellow.Println(line)
	default:
		fmt.Println(line)
	}
}
