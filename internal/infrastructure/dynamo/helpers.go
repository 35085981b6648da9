package dynamo

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// inTenant reports whether a document belongs to the requested tenant scope.
// An empty appID means the lookup is unscoped. A scoped lookup admits only an
// exact match; documents with a missing app_id attribute are rejected rather
// than leaked across the tenant boundary.
func inTenant(appID, docAppID string) bool {
	return appID == "" || docAppID == appID
}

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// filterBuilder assembles an AND-conjunction FilterExpression from exact-match
// and token-presence conditions. Attribute names are aliased so reserved words
// like "year" are safe.
type filterBuilder struct {
	conds  []string
	names  map[string]string
	values map[string]types.AttributeValue
	n      int
}

func newFilterBuilder() *filterBuilder {
	return &filterBuilder{
		names:  map[string]string{},
		values: map[string]types.AttributeValue{},
	}
}

// eq adds an exact-match condition on a string attribute.
func (b *filterBuilder) eq(attr, value string) {
	nameKey, valueKey := b.alias(attr, &types.AttributeValueMemberS{Value: value})
	b.conds = append(b.conds, nameKey+" = "+valueKey)
}

// tokenPresent requires the attribute to exist with a non-empty string value.
func (b *filterBuilder) tokenPresent(attr string) {
	nameKey, valueKey := b.alias(attr, &types.AttributeValueMemberS{Value: ""})
	b.conds = append(b.conds, "attribute_exists("+nameKey+") AND "+nameKey+" <> "+valueKey)
}

func (b *filterBuilder) alias(attr string, value types.AttributeValue) (string, string) {
	nameKey := fmt.Sprintf("#f%d", b.n)
	valueKey := fmt.Sprintf(":v%d", b.n)
	b.n++
	b.names[nameKey] = attr
	b.values[valueKey] = value
	return nameKey, valueKey
}

// expression returns the assembled FilterExpression, or nil when no condition
// was added (full-collection scan).
func (b *filterBuilder) expression() (*string, map[string]string, map[string]types.AttributeValue) {
	if len(b.conds) == 0 {
		return nil, nil, nil
	}
	return aws.String(strings.Join(b.conds, " AND ")), b.names, b.values
}
