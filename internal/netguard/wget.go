package netguard

import (
	"strings"

	"github.com/ppiankov/cmdgate/internal/policy"
	"github.com/ppiankov/cmdgate/internal/shellwords"
	"github.com/ppiankov/cmdgate/internal/validate"
)

var wgetUploadFlags = shellwords.Set("--post-data", "--post-file", "--body-data", "--body-file")

// wgetReadMethods are the only --method values that never carry a body.
// Any other method to an external host is treated as a mutation.
var wgetReadMethods = map[string]bool{"GET": true, "HEAD": true, "OPTIONS": true}

// wgetArgFlags consume the following token.
var wgetArgFlags = shellwords.Union(
	shellwords.Set(
		"-O", "--output-document",
		"-o", "--output-file",
		"-a", "--append-output",
		"-P", "--directory-prefix",
		"-U", "--user-agent",
		"--header", "--referer",
		"--user", "--password", "--http-user", "--http-password",
		"--proxy-user", "--proxy-password",
		"--limit-rate",
		"-e", "--execute",
		"-t", "--tries",
		"-T", "--timeout",
		"-w", "--wait",
		"--load-cookies", "--save-cookies",
		"--method",
	),
	wgetUploadFlags,
)

// ValidateWget blocks wget invocations that send data to a non-loopback
// host. Only operands with a URL scheme count as destinations.
func ValidateWget(command string) validate.Result {
	tokens, err := shellwords.Split(command)
	if err != nil {
		return validate.Reject(parseFailure)
	}
	if len(tokens) == 0 || policy.BaseName(tokens[0]) != "wget" {
		return validate.Reject("not a wget command")
	}

	in := wgetIntent(tokens[1:])
	return decide("wget", in, func(method string) string {
		return "wget --method=" + method
	})
}

func wgetIntent(tokens []string) intent {
	var in intent
	args := shellwords.ParseArgs(tokens, wgetArgFlags)

	for _, opt := range args.Options {
		switch {
		case wgetUploadFlags[opt.Name]:
			if in.uploadFlag == "" {
				in.uploadFlag = opt.Name
			}
		case opt.Name == "--method":
			m := strings.ToUpper(opt.Value)
			if in.method == "" && m != "" && !wgetReadMethods[m] {
				in.method = m
			}
		}
	}

	for _, tok := range args.Operands {
		if hasScheme(tok) {
			in.targets = append(in.targets, tok)
		}
	}
	return in
}
