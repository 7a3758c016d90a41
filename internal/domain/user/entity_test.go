package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanInterpret(t *testing.T) {
	scope, ok := RoleInterpreter.CanInterpret()
	assert.True(t, ok)
	assert.Equal(t, ScopeBooth, scope)

	scope, ok = RoleGlobalInterpreter.CanInterpret()
	assert.True(t, ok)
	assert.Equal(t, ScopeGlobal, scope)

	for _, r := range []Role{RoleRecruiter, RoleJobSeeker, RoleAdmin, RoleSupport} {
		_, ok := r.CanInterpret()
		assert.False(t, ok, r)
	}
}

func TestInactiveInterpreterHasNoScope(t *testing.T) {
	u := User{Role: RoleInterpreter, Active: false}
	_, ok := u.InterpreterScope()
	assert.False(t, ok)

	u.Active = true
	scope, ok := u.InterpreterScope()
	assert.True(t, ok)
	assert.Equal(t, ScopeBooth, scope)
}

func TestPrivilegedRoles(t *testing.T) {
	assert.True(t, RoleAdmin.IsPrivileged())
	assert.True(t, RoleGlobalSupport.IsPrivileged())
	assert.False(t, RoleRecruiter.IsPrivileged())
	assert.False(t, RoleJobSeeker.IsPrivileged())
}
