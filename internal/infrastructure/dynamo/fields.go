package dynamo

// DynamoDB attribute names of the key-value table that are referenced outside
// kvItem's struct tags.
const (
	fieldKey       = "key"
	fieldExpiresAt = "expires_at"
)
