package policy

import (
	"fmt"

	"github.com/ppiankov/cmdgate/internal/mode"
)

// ValidatorID names a validator implementation. The registry resolves IDs
// to implementations; the classifier only deals in IDs.
type ValidatorID string

const (
	ValidateRm      ValidatorID = "validate_rm"
	ValidateChmod   ValidatorID = "validate_chmod"
	ValidateKill    ValidatorID = "validate_kill"
	ValidatePkill   ValidatorID = "validate_pkill"
	ValidateKillall ValidatorID = "validate_killall"
	ValidateCurl    ValidatorID = "validate_curl"
	ValidateWget    ValidatorID = "validate_wget"
	ValidateGit     ValidatorID = "validate_git"

	ValidateInitScript ValidatorID = "validate_init_script"
	ValidateDropdb     ValidatorID = "validate_dropdb"
	ValidateDropuser   ValidatorID = "validate_dropuser"
	ValidatePsql       ValidatorID = "validate_psql"
	ValidateMysql      ValidatorID = "validate_mysql"
	ValidateMysqladmin ValidatorID = "validate_mysqladmin"
	ValidateRedisCli   ValidatorID = "validate_redis_cli"
	ValidateMongosh    ValidatorID = "validate_mongosh"
)

// baseValidated is active in every mode.
var baseValidated = map[string]ValidatorID{
	"rm":      ValidateRm,
	"chmod":   ValidateChmod,
	"kill":    ValidateKill,
	"pkill":   ValidatePkill,
	"killall": ValidateKillall,
	"git":     ValidateGit,
}

// strictValidated is added on top of baseValidated in strict mode.
var strictValidated = map[string]ValidatorID{
	"curl": ValidateCurl,
	"wget": ValidateWget,
}

// projectValidated binds validators to commands outside the tier table.
// They only run once an operator permits the command as a project command.
var projectValidated = map[string]ValidatorID{
	"init.sh":    ValidateInitScript,
	"dropdb":     ValidateDropdb,
	"dropuser":   ValidateDropuser,
	"psql":       ValidatePsql,
	"mysql":      ValidateMysql,
	"mariadb":    ValidateMysql,
	"mysqladmin": ValidateMysqladmin,
	"redis-cli":  ValidateRedisCli,
	"mongosh":    ValidateMongosh,
	"mongo":      ValidateMongosh,
}

// ProjectValidated returns the validators bound to project-only commands.
func ProjectValidated() map[string]ValidatorID {
	out := make(map[string]ValidatorID, len(projectValidated))
	for name, id := range projectValidated {
		out[name] = id
	}
	return out
}

// ValidatedCommands returns the command → validator mapping for mode m.
// Strict entries are pure additions; no base entry is ever removed.
func ValidatedCommands(m mode.Mode) map[string]ValidatorID {
	out := make(map[string]ValidatorID, len(baseValidated)+len(strictValidated))
	for name, id := range baseValidated {
		out[name] = id
	}
	if m.IsStrict() {
		for name, id := range strictValidated {
			out[name] = id
		}
	}
	return out
}

// ValidatorFor returns the validator ID bound to name in mode m, project
// command bindings included.
func ValidatorFor(name string, m mode.Mode) (ValidatorID, bool) {
	if id, ok := baseValidated[name]; ok {
		return id, true
	}
	if m.IsStrict() {
		if id, ok := strictValidated[name]; ok {
			return id, true
		}
	}
	if id, ok := projectValidated[name]; ok {
		return id, true
	}
	return "", false
}

// CheckProjectCommands rejects project command lists that would reopen a
// dangerous command.
func CheckProjectCommands(names []string) error {
	for _, name := range names {
		if t, ok := commandTiers[name]; ok && t == TierDangerous {
			return fmt.Errorf("project command %q is in the %s tier and cannot be allowlisted", name, TierLabel(t))
		}
	}
	return nil
}
