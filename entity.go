package dynamodel

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// EntityType discriminates which logical entity a generic row represents.
// It is immutable after creation.
type EntityType string

const (
	TypeStudent    EntityType = "STUDENT"
	TypeCourse     EntityType = "COURSE"
	TypeEnrollment EntityType = "ENROLLMENT"
	TypeDirectory  EntityType = "DIRECTORY"
	TypeFile       EntityType = "FILE"
	TypeRoot       EntityType = "ROOT"

	// typeCursor marks internal pagination cursor rows. Cursor rows are an
	// implementation detail of Paginator and never surface from queries made
	// through the services.
	typeCursor EntityType = "CURSOR"
)

// SelfSortKey is the reserved sort key of an identity row. Entities that
// participate in adjacency relationships store their own data under
// (id, SelfSortKey); edge rows under the same partition key use the related
// entity's id as the sort key instead.
const SelfSortKey = "--root--"

// Entity is the generic single-table row. The (PK, SK) pair is globally
// unique; every other attribute rides in the string map.
type Entity struct {
	PK         string            `dynamodbav:"pk"`
	SK         string            `dynamodbav:"sk"`
	Type       EntityType        `dynamodbav:"type"`
	Attributes map[string]string `dynamodbav:"attributes"`
}

// Attribute names as stored in the table.
const (
	AttributeNamePK         = "pk"
	AttributeNameSK         = "sk"
	AttributeNameType       = "type"
	AttributeNameAttributes = "attributes"
)

// Item is an alias for the dynamodb attribute value map.
type Item = map[string]types.AttributeValue

// MarshalItem converts the entity into a DynamoDB item.
func MarshalItem(e *Entity) (Item, error) {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return item, nil
}

// UnmarshalItem converts a DynamoDB item back into an Entity.
func UnmarshalItem(item Item) (Entity, error) {
	var e Entity
	if err := attributevalue.UnmarshalMap(item, &e); err != nil {
		return e, fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return e, nil
}

// Key builds the primary key item for a (pk, sk) pair.
func Key(pk, sk string) Item {
	return Item{
		AttributeNamePK: &types.AttributeValueMemberS{Value: pk},
		AttributeNameSK: &types.AttributeValueMemberS{Value: sk},
	}
}

// Attribute returns the named attribute value, or the empty string when the
// entity does not carry it.
func (e *Entity) Attribute(name string) string {
	return e.Attributes[name]
}

// IsIdentity reports whether the entity is an identity row rather than an
// edge or path row.
func (e *Entity) IsIdentity() bool {
	return e.SK == SelfSortKey
}
