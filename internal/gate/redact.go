package gate

import (
	"regexp"
	"strings"
)

// secretPatterns match credential values (not variable names) in output.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9\-]{20,}`),
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`gsk_[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36,}`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`\b[a-f0-9]{64,}\b`),
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-_.]{20,}`),
}

// envAssignment matches KEY=VALUE lines for sensitive names, as printed by
// env, set, export -p and declare -p.
var envAssignment = regexp.MustCompile(
	`(?im)^(?:declare -x |export )?` +
		`(\w*_API_KEY|\w*_TOKEN|\w*_SECRET\w*|API_KEY|API_SECRET|AWS_SECRET_ACCESS_KEY|CMDGATE_\w*)` +
		`[= ].*$`,
)

const redactPlaceholder = "[REDACTED]"

// RedactOutput masks credentials in output and returns the masked text and
// the number of matches.
func RedactOutput(output string) (string, int) {
	count := 0
	out := output
	for _, re := range secretPatterns {
		if n := len(re.FindAllStringIndex(out, -1)); n > 0 {
			count += n
			out = re.ReplaceAllString(out, redactPlaceholder)
		}
	}
	if n := len(envAssignment.FindAllStringIndex(out, -1)); n > 0 {
		count += n
		out = envAssignment.ReplaceAllString(out, redactPlaceholder)
	}

	double := redactPlaceholder + "\n" + redactPlaceholder
	for strings.Contains(out, double) {
		out = strings.ReplaceAll(out, double, redactPlaceholder)
	}
	return out, count
}
