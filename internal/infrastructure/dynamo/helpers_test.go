package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterBuilder_Empty(t *testing.T) {
	expr, names, values := newFilterBuilder().expression()
	assert.Nil(t, expr)
	assert.Nil(t, names)
	assert.Nil(t, values)
}

func TestFilterBuilder_SingleEq(t *testing.T) {
	b := newFilterBuilder()
	b.eq("course", "BSc CS")
	expr, names, values := b.expression()

	require.NotNil(t, expr)
	assert.Equal(t, "#f0 = :v0", *expr)
	assert.Equal(t, map[string]string{"#f0": "course"}, names)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "BSc CS"}, values[":v0"])
}

func TestFilterBuilder_Conjunction(t *testing.T) {
	b := newFilterBuilder()
	b.eq("campus", "Main")
	b.eq("year", "3")
	b.tokenPresent("fcm_token")
	expr, names, values := b.expression()

	require.NotNil(t, expr)
	assert.Equal(t, "#f0 = :v0 AND #f1 = :v1 AND attribute_exists(#f2) AND #f2 <> :v2", *expr)
	assert.Equal(t, "fcm_token", names["#f2"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: ""}, values[":v2"])
}

func TestInTenant(t *testing.T) {
	// Unscoped lookups admit everything.
	assert.True(t, inTenant("", ""))
	assert.True(t, inTenant("", "app1"))

	// Scoped lookups require an exact match; a document with a missing
	// app_id attribute must not slip through.
	assert.True(t, inTenant("app1", "app1"))
	assert.False(t, inTenant("app1", "app2"))
	assert.False(t, inTenant("app1", ""))
}

func TestStrKey(t *testing.T) {
	key := strKey("user_id", "u1")
	assert.Equal(t, &types.AttributeValueMemberS{Value: "u1"}, key["user_id"])
}
