package repository

// DynamoOption applies a configuration option to the DynamoStore.
type DynamoOption func(*DynamoStore)

// WithTable sets the DynamoDB table name.
func WithTable(name string) DynamoOption {
	return func(s *DynamoStore) {
		if name != "" {
			s.table = name
		}
	}
}

// WithRegion overrides the AWS region resolved from the environment.
func WithRegion(region string) DynamoOption {
	return func(s *DynamoStore) {
		s.region = region
	}
}

// WithEndpoint points the client at an alternative DynamoDB endpoint,
// typically a local instance.
func WithEndpoint(endpoint string) DynamoOption {
	return func(s *DynamoStore) {
		s.endpoint = endpoint
	}
}
