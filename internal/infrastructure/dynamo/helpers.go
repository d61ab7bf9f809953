package dynamo

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// expiresAt converts a ttl into the Unix-seconds attribute DynamoDB TTL expects.
// A zero ttl yields 0, which DynamoDB TTL ignores.
func expiresAt(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now.Add(ttl).Unix()
}

// itemExpired reports whether an item's expires_at lies in the past. DynamoDB
// deletes expired items lazily, so reads have to check it themselves.
func itemExpired(item map[string]types.AttributeValue, now time.Time) bool {
	av, ok := item[fieldExpiresAt].(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(av.Value, 10, 64)
	if err != nil || ts == 0 {
		return false
	}
	return now.Unix() >= ts
}
