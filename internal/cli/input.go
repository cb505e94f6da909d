package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/techwork/portal-cli/internal/models"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from
// reader. The trailing newline is trimmed. If EOF occurs after some input was
// read, the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetTextDefault is GetSimpleText with a default: an empty answer returns def.
func GetTextDefault(reader *bufio.Reader, prompt, def string, w io.Writer) (string, error) {
	label := prompt
	if def != "" {
		label = fmt.Sprintf("%s [%s]", prompt, def)
	}
	text, err := GetSimpleText(reader, label, w)
	if err != nil {
		return "", err
	}
	if text == "" {
		return def, nil
	}
	return text, nil
}

// GetPassword prints a password prompt to w and reads a password from the
// user's terminal without echo. A newline is printed after the read to keep
// the UI tidy.
func GetPassword(prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// GetChoice prints a numbered option list and reads a selection, accepting
// either the number or the option value. An empty answer picks def.
func GetChoice(reader *bufio.Reader, prompt string, options []models.Option, def string, w io.Writer) (string, error) {
	if _, err := fmt.Fprintln(w, prompt); err != nil {
		return "", err
	}
	for i, opt := range options {
		marker := " "
		if opt.Value == def {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, " %s %d) %s\n", marker, i+1, opt.Label); err != nil {
			return "", err
		}
	}

	answer, err := GetSimpleText(reader, "Choose", w)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}

	for i, opt := range options {
		if answer == opt.Value || answer == fmt.Sprint(i+1) {
			return opt.Value, nil
		}
	}
	return "", fmt.Errorf("invalid choice %q", answer)
}
