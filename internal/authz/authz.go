// Package authz decides which role may perform which action.
package authz

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"pharmatrack/m/domain"
)

//go:embed model.conf
var modelText string

const (
	ObjectCustomer     = "customer"
	ObjectMedicine     = "medicine"
	ObjectSale         = "sale"
	ObjectCredit       = "credit"
	ObjectDashboard    = "dashboard"
	ObjectSettings     = "settings"
	ObjectSubscription = "subscription"
	ObjectExport       = "export"
	ObjectUser         = "user"
	ObjectActivity     = "activity"
	ObjectShop         = "shop"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionManage = "manage"
)

var staffPolicies = [][]string{
	{ObjectCustomer, ActionView}, {ObjectCustomer, ActionCreate}, {ObjectCustomer, ActionUpdate},
	{ObjectMedicine, ActionView}, {ObjectMedicine, ActionCreate}, {ObjectMedicine, ActionUpdate},
	{ObjectSale, ActionView}, {ObjectSale, ActionCreate},
	{ObjectCredit, ActionView}, {ObjectCredit, ActionUpdate},
	{ObjectDashboard, ActionView},
	{ObjectSettings, ActionView},
	{ObjectSubscription, ActionView},
}

var adminPolicies = [][]string{
	{ObjectSettings, ActionUpdate},
	{ObjectSubscription, ActionManage},
	{ObjectExport, ActionView},
	{ObjectUser, ActionView}, {ObjectUser, ActionManage},
	{ObjectActivity, ActionView},
}

// Policy answers capability checks keyed by (role, object, action).
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

// NewPolicy builds the role policy: admins inherit everything staff may do,
// superadmins may do anything.
func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("load authz model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return &Policy{enforcer: enforcer}, nil
}

func seedPolicies(e *casbin.SyncedEnforcer) error {
	var rules [][]string
	for _, p := range staffPolicies {
		rules = append(rules, []string{roleSubject(domain.RoleStaff), p[0], p[1]})
	}
	for _, p := range adminPolicies {
		rules = append(rules, []string{roleSubject(domain.RoleAdmin), p[0], p[1]})
	}
	rules = append(rules, []string{roleSubject(domain.RoleSuperAdmin), "*", "*"})

	if _, err := e.AddPolicies(rules); err != nil {
		return fmt.Errorf("seed policies: %w", err)
	}
	if _, err := e.AddGroupingPolicy(roleSubject(domain.RoleAdmin), roleSubject(domain.RoleStaff)); err != nil {
		return fmt.Errorf("seed role inheritance: %w", err)
	}
	return nil
}

// Allowed reports whether role may perform action on object.
func (p *Policy) Allowed(role domain.Role, object, action string) (bool, error) {
	if !role.Valid() {
		return false, nil
	}
	return p.enforcer.Enforce(roleSubject(role), object, action)
}

// Authorize is Allowed that fails with a ForbiddenError.
func (p *Policy) Authorize(role domain.Role, object, action string) error {
	ok, err := p.Allowed(role, object, action)
	if err != nil {
		return fmt.Errorf("authorize: %w", err)
	}
	if !ok {
		return &domain.ForbiddenError{Message: "insufficient permissions"}
	}
	return nil
}

func roleSubject(role domain.Role) string {
	return "role:" + string(role)
}
