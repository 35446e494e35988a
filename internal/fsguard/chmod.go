package fsguard

import (
	"fmt"
	"regexp"

	"github.com/ppiankov/cmdgate/internal/policy"
	"github.com/ppiankov/cmdgate/internal/shellwords"
	"github.com/ppiankov/cmdgate/internal/validate"
)

// execBitMode matches symbolic modes that only add the executable bit,
// e.g. "+x", "u+x", "ug+x".
var execBitMode = regexp.MustCompile(`^[ugoa]*\+x$`)

var (
	numericMode  = regexp.MustCompile(`^[0-7]{3,4}$`)
	symbolicMode = regexp.MustCompile(`^[ugoa]*[-+=][rwxXst]*$`)
)

// ValidateChmod allows only making files executable. Recursive changes
// and numeric modes are rejected.
func ValidateChmod(command string) validate.Result {
	tokens, err := shellwords.Split(command)
	if err != nil {
		return validate.Reject(parseFailure)
	}
	if len(tokens) == 0 || policy.BaseName(tokens[0]) != "chmod" {
		return validate.Reject("not a chmod command")
	}

	// "-x" looks like a flag but is a mode; only a few real flags exist.
	var flags, operands []string
	for i, tok := range tokens[1:] {
		if tok == "--" {
			operands = append(operands, tokens[i+2:]...)
			break
		}
		if len(tok) > 1 && tok[0] == '-' && !symbolicMode.MatchString(tok) {
			flags = append(flags, tok)
			continue
		}
		operands = append(operands, tok)
	}

	for _, f := range flags {
		switch f {
		case "-R", "--recursive":
			return validate.Reject("chmod -R is not allowed")
		case "-v", "-c", "-f", "--verbose", "--changes", "--silent", "--quiet":
		default:
			return validate.Reject(fmt.Sprintf("chmod flag '%s' is not allowed", f))
		}
	}

	if len(operands) < 2 {
		return validate.Reject("chmod requires a mode and at least one file")
	}

	m := operands[0]
	switch {
	case numericMode.MatchString(m):
		return validate.Reject(fmt.Sprintf("chmod numeric mode '%s' is not allowed, use +x", m))
	case !execBitMode.MatchString(m):
		return validate.Reject(fmt.Sprintf("chmod mode '%s' is not allowed, only +x", m))
	}
	return validate.Allow()
}
