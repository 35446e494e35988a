// Package netguard validates network transfer commands (curl, wget) so that
// an agent cannot send data to external hosts while still being able to
// fetch from anywhere and talk freely to local development servers.
//
// The validators predict intent from argv tokens only. They never resolve
// hosts or touch the network.
package netguard

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/ppiankov/cmdgate/internal/validate"
)

// loopbackHosts are destinations exempt from upload blocking.
var loopbackHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
	"0.0.0.0":   true,
}

var urlSchemes = []string{"http://", "https://", "ftp://"}

// uploadMethods are explicit HTTP methods that send a request body.
var uploadMethods = map[string]bool{
	"POST":  true,
	"PUT":   true,
	"PATCH": true,
}

const (
	parseFailure = "could not parse command"
	policyHint   = "Only GET requests allowed to external hosts. Localhost requests are unrestricted."
)

// intent is what one command invocation is predicted to do. It is built
// once per validation call and discarded.
type intent struct {
	uploadFlag string   // first data/form/upload flag seen
	method     string   // first explicit upload method seen, upper-cased
	targets    []string // every destination URL on the line, scheme included
}

func (in intent) uploads() bool {
	return in.uploadFlag != "" || in.method != ""
}

// local reports whether every destination is a loopback host. A line with
// no recognised destination is not local.
func (in intent) local() bool {
	if len(in.targets) == 0 {
		return false
	}
	for _, t := range in.targets {
		if !isLoopback(t) {
			return false
		}
	}
	return true
}

func hasScheme(tok string) bool {
	lower := strings.ToLower(tok)
	for _, s := range urlSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// bareURL turns a scheme-less host token into an http URL for host
// classification only.
func bareURL(tok string) string {
	if ip := net.ParseIP(tok); ip != nil && ip.To4() == nil {
		return "http://[" + tok + "]"
	}
	return "http://" + tok
}

// bareHost strips an optional path and port from a scheme-less token,
// so "localhost:3000/api" yields "localhost".
func bareHost(tok string) string {
	host, _, _ := strings.Cut(tok, "/")
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// isLoopback reports whether target's host is a loopback alias.
// Unparseable targets are not loopback.
func isLoopback(target string) bool {
	if target == "" {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return loopbackHosts[strings.ToLower(u.Hostname())]
}

// decide applies the shared decision rule. A request body may only go to
// loopback hosts, and the tools send it to every URL on the line.
// methodLabel renders the method part of a rejection, e.g. "curl POST".
func decide(tool string, in intent, methodLabel func(method string) string) validate.Result {
	if !in.uploads() || in.local() {
		return validate.Allow()
	}
	if in.uploadFlag != "" {
		return validate.Reject(fmt.Sprintf(
			"%s with '%s' blocked in strict mode (potential data exfiltration). %s",
			tool, in.uploadFlag, policyHint))
	}
	return validate.Reject(fmt.Sprintf(
		"%s blocked in strict mode (potential data exfiltration). %s",
		methodLabel(in.method), policyHint))
}
