package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword prompts with echo disabled when stdin is a terminal.
// Otherwise it reads one line, so passwords can be piped in.
func (g *globals) readPassword(cmd *cobra.Command, prompt string) ([]byte, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		return pw, nil
	}

	if g.lines == nil {
		g.lines = bufio.NewReader(cmd.InOrStdin())
	}
	line, err := g.lines.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, errors.New("password is empty")
	}
	return []byte(line), nil
}

// readNewPassword asks twice on a terminal. Piped input is read once.
func (g *globals) readNewPassword(cmd *cobra.Command) ([]byte, error) {
	first, err := g.readPassword(cmd, "New password: ")
	if err != nil {
		return nil, err
	}
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return first, nil
	}

	second, err := g.readPassword(cmd, "Confirm password: ")
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)
	if string(first) != string(second) {
		clear(first)
		return nil, errors.New("passwords do not match")
	}
	return first, nil
}

func newPasswdCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Encrypt the time log or change its password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.load(false)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := g.openDocument(cmd, e, false); err != nil {
				return err
			}

			pw, err := g.readNewPassword(cmd)
			if err != nil {
				return err
			}
			defer clear(pw)
			if err := e.ws.SetPassword(pw); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "encrypted %s\n", e.ws.Path())
			return nil
		},
	}
}

func newDecryptCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt",
		Short: "Remove the password and store the time log as plaintext",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.load(false)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := g.openDocument(cmd, e, false); err != nil {
				return err
			}
			if !e.ws.Encrypted() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is not encrypted\n", e.ws.Path())
				return nil
			}
			if err := e.ws.RemoveEncryption(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "decrypted %s\n", e.ws.Path())
			return nil
		},
	}
}
