package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvironmentExists(t *testing.T) {
	t.Parallel()

	env := FromSlice([]string{})

	env.Set("FOO", "bar")
	env.Set("EMPTY", "")

	assert.Equal(t, env.Exists("FOO"), true)
	assert.Equal(t, env.Exists("EMPTY"), true)
	assert.Equal(t, env.Exists("does not exist"), false)
}

func TestEnvironmentSet(t *testing.T) {
	t.Parallel()

	env := FromSlice([]string{})

	env.Set("    THIS_IS_THE_BEST   \n\n", "\"IT SURE IS\"\n\n")

	v, ok := env.Get("    THIS_IS_THE_BEST   \n\n")
	assert.Equal(t, v, "\"IT SURE IS\"\n\n")
	assert.True(t, ok)
}

func TestEnvironmentGetBool(t *testing.T) {
	t.Parallel()

	env := FromSlice([]string{
		"DEBUG_ENABLED=1",
		"VERBOSE_ENABLED=false",
		"TRACE_ENABLED=",
		"QUIET_ENABLED=off",
	})

	assert.True(t, env.GetBool(`DEBUG_ENABLED`, false))
	assert.False(t, env.GetBool(`VERBOSE_ENABLED`, true))
	assert.False(t, env.GetBool(`TRACE_ENABLED`, false))
	assert.True(t, env.GetBool(`TRACE_ENABLED`, true))
	assert.False(t, env.GetBool(`QUIET_ENABLED`, true))
}

func TestEnvironmentRemove(t *testing.T) {
	env := FromSlice([]string{"FOO=bar"})

	v, ok := env.Get("FOO")
	assert.Equal(t, v, "bar")
	assert.True(t, ok)

	assert.Equal(t, env.Remove("FOO"), "bar")

	v, ok = env.Get("FOO")
	assert.Equal(t, v, "")
	assert.False(t, ok)
}

func TestEnvironmentMerge(t *testing.T) {
	t.Parallel()

	env1 := FromSlice([]string{"FOO=bar"})
	env2 := FromSlice([]string{"BAR=foo", "FOO=override"})

	env1.Merge(env2)

	assert.Equal(t, env1.ToSlice(), []string{"BAR=foo", "FOO=override"})
}

func TestEnvironmentMergeMissingDoesNotOverride(t *testing.T) {
	t.Parallel()

	env1 := FromSlice([]string{"FOO=bar"})
	env2 := FromSlice([]string{"BAR=foo", "FOO=from-dotenv"})

	env1.MergeMissing(env2)

	assert.Equal(t, env1.ToSlice(), []string{"BAR=foo", "FOO=bar"})
}

func TestEnvironmentCopy(t *testing.T) {
	t.Parallel()

	env1 := FromSlice([]string{"FOO=bar"})
	env2 := env1.Copy()

	env1.Set("FOO", "not-bar-anymore")

	v, _ := env2.Get("FOO")
	assert.Equal(t, v, "bar")
}

func TestEnvironmentToSlice(t *testing.T) {
	t.Parallel()

	env := FromSlice([]string{"THIS_IS_GREAT=totes", "ZOMG=greatness"})

	assert.Equal(t, env.ToSlice(), []string{"THIS_IS_GREAT=totes", "ZOMG=greatness"})
}

func TestSplit(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		input       string
		name, value string
		ok          bool
	}{
		{input: "FOO=bar", name: "FOO", value: "bar", ok: true},
		{input: "BAZ=", name: "BAZ", value: "", ok: true},
		{input: "EQ=a=b", name: "EQ", value: "a=b", ok: true},
		{input: "nope", ok: false},
		{input: "=weird", ok: false},
	} {
		name, value, ok := Split(tc.input)
		assert.Equal(t, tc.name, name, "input %q", tc.input)
		assert.Equal(t, tc.value, value, "input %q", tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
	}
}
