package authz

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/rescale/rescale-analyses/internal/capability"
	"github.com/rescale/rescale-analyses/internal/logging"
)

// policyModel grants (subject, owner, action). Subjects may be grouped into
// roles with "g" lines, and an owner of "*" matches every owner. Policy
// subjects and owners go through realmless so "bob@REALM" in a policy file
// matches the normalized request.
const policyModel = `
[request_definition]
r = sub, owner, act

[policy_definition]
p = sub, owner, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, realmless(p.sub)) && keyMatch(r.owner, realmless(p.owner)) && r.act == p.act
`

// PolicyOverride is a casbin-backed OwnershipOverride.
//
// A policy file looks like:
//
//	p, admins, *, delete
//	g, carol, admins
type PolicyOverride struct {
	enforcer *casbin.Enforcer
	logger   *logging.Logger
	mu       sync.RWMutex
}

// NewPolicyOverride creates an override with no policies. Grant adds rules.
func NewPolicyOverride(logger *logging.Logger) (*PolicyOverride, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to parse policy model: %w", err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
	}
	return newPolicyOverride(enf, logger), nil
}

// LoadPolicyOverride creates an override from a casbin CSV policy file.
func LoadPolicyOverride(path string, logger *logging.Logger) (*PolicyOverride, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to parse policy model: %w", err)
	}
	enf, err := casbin.NewEnforcer(m, fileadapter.NewAdapter(path))
	if err != nil {
		return nil, fmt.Errorf("authz: failed to load policy %s: %w", path, err)
	}
	return newPolicyOverride(enf, logger), nil
}

func newPolicyOverride(enf *casbin.Enforcer, logger *logging.Logger) *PolicyOverride {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	enf.AddFunction("realmless", realmless)
	return &PolicyOverride{
		enforcer: enf,
		logger:   logger.Component("authz"),
	}
}

func realmless(args ...interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("realmless: expected 1 argument, got %d", len(args))
	}
	name, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("realmless: expected string, got %T", args[0])
	}
	return capability.NormalizeUsername(name), nil
}

// Grant allows subject to perform action on analyses owned by owner.
// Use "*" as owner to grant over every owner.
func (p *PolicyOverride) Grant(subject, owner, action string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	subject = capability.NormalizeUsername(subject)
	owner = capability.NormalizeUsername(owner)
	if _, err := p.enforcer.AddPolicy(subject, owner, action); err != nil {
		return fmt.Errorf("authz: failed to add policy: %w", err)
	}
	return nil
}

// AssignRole makes user a member of role.
func (p *PolicyOverride) AssignRole(user, role string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.enforcer.AddGroupingPolicy(capability.NormalizeUsername(user), role); err != nil {
		return fmt.Errorf("authz: failed to add role: %w", err)
	}
	return nil
}

// CanActFor implements OwnershipOverride. Enforcement errors deny.
func (p *PolicyOverride) CanActFor(user, owner, action string) bool {
	user = capability.NormalizeUsername(user)
	owner = capability.NormalizeUsername(owner)
	if user == "" || owner == "" {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	allowed, err := p.enforcer.Enforce(user, owner, action)
	if err != nil {
		p.logger.Warn().Err(err).
			Str("user", user).
			Str("owner", owner).
			Str("action", action).
			Msg("policy evaluation failed, denying")
		return false
	}
	if allowed {
		p.logger.Debug().
			Str("user", user).
			Str("owner", owner).
			Str("action", action).
			Msg("ownership override granted")
	}
	return allowed
}
