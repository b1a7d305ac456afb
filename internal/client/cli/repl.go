package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	UpdateAccount(ctx context.Context) error
	Upload(ctx context.Context, kind, path string) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF or when the user types "exit" or "quit". Errors
// returned by commands are printed and do not stop the loop.
//
//	Not logged in: help, register, login, upload, exit
//	Logged in:     help, whoami, refresh, passwd, account, upload, logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("vt %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, refresh, passwd, account, upload <avatar|coverImage> [file], logout, exit")
			} else {
				printlnFn("Available commands: register, login, upload <avatar|coverImage> [file], exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "refresh":
			cmdErr = a.Refresh(ctx)

		case "passwd":
			cmdErr = a.ChangePassword(ctx)

		case "account":
			cmdErr = a.UpdateAccount(ctx)

		case "upload":
			if len(args) == 0 {
				printlnFn("Usage: upload <avatar|coverImage> [file]")
				continue
			}
			path := ""
			if len(args) > 1 {
				path = args[1]
			}
			cmdErr = a.Upload(ctx, args[0], path)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
