package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKeepsRuleOrder(t *testing.T) {
	r := Validate("x",
		Check("first", true),
		Check("skipped", false),
		Check("second", true),
	)

	require.False(t, r.IsValid())
	assert.Equal(t, Errors{{Message: "first"}, {Message: "second"}}, r.Errors())
	assert.Equal(t, "", r.Value())
}

func TestValidateReturnsValueWhenNoRuleBroken(t *testing.T) {
	r := Validate(42, Check("never", false))

	require.True(t, r.IsValid())
	v, err := r.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFailWithoutErrorsIsInvalid(t *testing.T) {
	r := Fail[string]()
	assert.False(t, r.IsValid())
	_, err := r.Unwrap()
	assert.Error(t, err)
}

func TestCollectorFlattensAllFieldErrors(t *testing.T) {
	var c Collector
	a := Field(&c, "title", Validate("ab", Check("too short", true)))
	b := Field(&c, "location", Ok("Oslo"))
	Field(&c, "host", Validate("", Check("empty", true), Check("blank", true)))
	c.Check("dates", Check("start after end", true))

	assert.Equal(t, "", a)
	assert.Equal(t, "Oslo", b)

	res := Finish(&c, struct{}{})
	require.False(t, res.IsValid())
	assert.Equal(t, Errors{
		{Field: "title", Message: "too short"},
		{Field: "host", Message: "empty"},
		{Field: "host", Message: "blank"},
		{Field: "dates", Message: "start after end"},
	}, res.Errors())
	assert.Equal(t, []string{"empty", "blank"}, res.Errors().ForField("host"))
}

func TestMapPassesErrorsThrough(t *testing.T) {
	bad := Map(Validate(1, Check("nope", true)), func(i int) string { return "ok" })
	assert.False(t, bad.IsValid())
	assert.Equal(t, "nope", bad.Errors().Error())

	good := Map(Ok(2), func(i int) int { return i * 2 })
	assert.Equal(t, 4, good.Value())
}
