package netguard

import (
	"strings"

	"github.com/ppiankov/cmdgate/internal/policy"
	"github.com/ppiankov/cmdgate/internal/shellwords"
	"github.com/ppiankov/cmdgate/internal/validate"
)

// curlUploadFlags send a request body.
var curlUploadFlags = shellwords.Set(
	"-d", "--data", "--data-raw", "--data-binary", "--data-urlencode", "--data-ascii",
	"-F", "--form",
	"-T", "--upload-file",
	"--json",
)

var curlMethodFlags = shellwords.Set("-X", "--request")

// curlArgFlags consume the following token.
var curlArgFlags = shellwords.Union(
	shellwords.Set(
		"-o", "--output",
		"-H", "--header",
		"-A", "--user-agent",
		"-e", "--referer",
		"-u", "--user",
		"-x", "--proxy",
		"-b", "--cookie",
		"-c", "--cookie-jar",
		"--connect-timeout", "-m", "--max-time",
		"--retry", "--retry-delay", "--retry-max-time",
		"-w", "--write-out",
		"--url",
	),
	curlUploadFlags,
	curlMethodFlags,
)

// ValidateCurl blocks curl invocations that send data to a non-loopback
// host. Plain fetches and any request to a loopback host are allowed.
func ValidateCurl(command string) validate.Result {
	tokens, err := shellwords.Split(command)
	if err != nil {
		return validate.Reject(parseFailure)
	}
	if len(tokens) == 0 || policy.BaseName(tokens[0]) != "curl" {
		return validate.Reject("not a curl command")
	}

	in := curlIntent(tokens[1:])
	return decide("curl", in, func(method string) string {
		return "curl " + method
	})
}

func curlIntent(tokens []string) intent {
	var in intent
	args := shellwords.ParseArgs(tokens, curlArgFlags)

	for _, opt := range args.Options {
		switch {
		case curlUploadFlags[opt.Name]:
			if in.uploadFlag == "" {
				in.uploadFlag = opt.Name
			}
		case curlMethodFlags[opt.Name]:
			m := strings.ToUpper(opt.Value)
			if in.method == "" && uploadMethods[m] {
				in.method = m
			}
		case opt.Name == "--url":
			if t := curlTarget(opt.Value); opt.HasValue && t != "" {
				in.targets = append(in.targets, t)
			}
		}
	}

	for _, tok := range args.Operands {
		if t := curlTarget(tok); t != "" {
			in.targets = append(in.targets, t)
		}
	}
	return in
}

// curlTarget returns tok as a URL if it looks like one, or "".
func curlTarget(tok string) string {
	switch {
	case hasScheme(tok):
		return tok
	case loopbackHosts[strings.ToLower(bareHost(tok))]:
		return bareURL(tok)
	case strings.Contains(tok, "."):
		return bareURL(tok)
	}
	return ""
}
