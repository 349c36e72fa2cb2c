package events

import (
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func convertStreamAttribute(attr events.DynamoDBAttributeValue) types.AttributeValue {
	switch attr.DataType() {
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{
			Value: attr.Boolean(),
		}
	case events.DataTypeString:
		return &types.AttributeValueMemberS{
			Value: attr.String(),
		}
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{
			Value: attr.Binary(),
		}
	case events.DataTypeList:
		ls := make([]types.AttributeValue, len(attr.List()))
		for i, item := range attr.List() {
			ls[i] = convertStreamAttribute(item)
		}
		return &types.AttributeValueMemberL{
			Value: ls,
		}
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{
			Value: attr.IsNull(),
		}
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{
			Value: attr.BinarySet(),
		}
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{
			Value: attr.Number(),
		}
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{
			Value: attr.NumberSet(),
		}
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{
			Value: attr.StringSet(),
		}
	case events.DataTypeMap:
		ms := make(map[string]types.AttributeValue, len(attr.Map()))
		for field, value := range attr.Map() {
			ms[field] = convertStreamAttribute(value)
		}
		return &types.AttributeValueMemberM{
			Value: ms,
		}
	}
	return nil
}

// ConvertImage turns a stream image into the attribute map the SDK reads.
func ConvertImage(image map[string]events.DynamoDBAttributeValue) map[string]types.AttributeValue {
	converted := make(map[string]types.AttributeValue, len(image))
	for field, value := range image {
		if attr := convertStreamAttribute(value); attr != nil {
			converted[field] = attr
		}
	}
	return converted
}

// UnmarshalImage decodes a stream image into the document type T.
func UnmarshalImage[T interface{}](image map[string]events.DynamoDBAttributeValue) (T, error) {
	var item T
	err := attributevalue.UnmarshalMap(ConvertImage(image), &item)
	return item, err
}

// RecordImage is the new image, or the old one for removals.
func RecordImage(record events.DynamoDBEventRecord) map[string]events.DynamoDBAttributeValue {
	if record.Change.NewImage != nil {
		return record.Change.NewImage
	}
	return record.Change.OldImage
}

func recordKey(record events.DynamoDBEventRecord, name string) string {
	if value, ok := record.Change.Keys[name]; ok && value.DataType() == events.DataTypeString {
		return value.String()
	}
	if value, ok := RecordImage(record)[name]; ok && value.DataType() == events.DataTypeString {
		return value.String()
	}
	return ""
}
