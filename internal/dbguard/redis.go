package dbguard

import (
	"fmt"
	"strings"

	"github.com/ppiankov/cmdgate/internal/shellwords"
	"github.com/ppiankov/cmdgate/internal/validate"
)

var redisArgFlags = shellwords.Set(
	"-h", "-p", "-s", "-a", "-u", "-n", "-r", "-i", "-d", "-D",
	"--user", "--pass", "--askpass", "--tls-cert", "--tls-key", "--cacert",
)

// redisBlocked are commands that wipe data, stop the server or change
// replication.
var redisBlocked = map[string]bool{
	"FLUSHALL": true, "FLUSHDB": true, "SHUTDOWN": true, "DEBUG": true,
	"REPLICAOF": true, "SLAVEOF": true, "MODULE": true,
}

// ValidateRedisCli rejects FLUSHALL, FLUSHDB, SHUTDOWN, CONFIG SET and
// similar server-level commands.
func ValidateRedisCli(command string) validate.Result {
	tokens, res, ok := parse(command, "redis-cli")
	if !ok {
		return res
	}
	args := shellwords.ParseArgs(tokens[1:], redisArgFlags)
	if len(args.Operands) == 0 {
		return validate.Allow()
	}

	cmd := strings.ToUpper(args.Operands[0])
	if redisBlocked[cmd] {
		return validate.Reject(fmt.Sprintf("redis-cli %s is not allowed", cmd))
	}
	if cmd == "CONFIG" && len(args.Operands) > 1 {
		switch sub := strings.ToUpper(args.Operands[1]); sub {
		case "SET", "REWRITE", "RESETSTAT":
			return validate.Reject(fmt.Sprintf("redis-cli CONFIG %s is not allowed", sub))
		}
	}
	return validate.Allow()
}
