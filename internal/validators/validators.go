// Package validators wires the built-in validator implementations into a
// registry.
package validators

import (
	"github.com/ppiankov/cmdgate/internal/dbguard"
	"github.com/ppiankov/cmdgate/internal/fsguard"
	"github.com/ppiankov/cmdgate/internal/gitguard"
	"github.com/ppiankov/cmdgate/internal/netguard"
	"github.com/ppiankov/cmdgate/internal/policy"
	"github.com/ppiankov/cmdgate/internal/procguard"
	"github.com/ppiankov/cmdgate/internal/validate"
)

// Builtin maps every validator ID to its built-in implementation.
var Builtin = map[policy.ValidatorID]validate.Func{
	policy.ValidateRm:      fsguard.ValidateRm,
	policy.ValidateChmod:   fsguard.ValidateChmod,
	policy.ValidateKill:    procguard.ValidateKill,
	policy.ValidatePkill:   procguard.ValidatePkill,
	policy.ValidateKillall: procguard.ValidateKillall,
	policy.ValidateCurl:    netguard.ValidateCurl,
	policy.ValidateWget:    netguard.ValidateWget,
	policy.ValidateGit:     gitguard.ValidateGit,

	policy.ValidateInitScript: fsguard.ValidateInitScript,
	policy.ValidateDropdb:     dbguard.ValidateDropdb,
	policy.ValidateDropuser:   dbguard.ValidateDropuser,
	policy.ValidatePsql:       dbguard.ValidatePsql,
	policy.ValidateMysql:      dbguard.ValidateMysql,
	policy.ValidateMysqladmin: dbguard.ValidateMysqladmin,
	policy.ValidateRedisCli:   dbguard.ValidateRedisCli,
	policy.ValidateMongosh:    dbguard.ValidateMongosh,
}

// Default returns a registry holding all built-in validators. Callers may
// Register additional collaborators or Replace built-ins afterwards.
func Default() *validate.Registry {
	r := validate.NewRegistry()
	for id, fn := range Builtin {
		r.Replace(id, fn)
	}
	return r
}
