// Package dynamo stores tasks in a single DynamoDB table keyed by task id.
//
// Items use the attribute names id, user_id, task_name and task_status.
// Listing is a filtered Scan that follows LastEvaluatedKey until the table is
// exhausted; there is no index on user_id, so cost grows with table size.
//
// Status changes are UpdateItem calls with a ConditionExpression on user_id
// and ReturnValues ALL_NEW. A ConditionalCheckFailedException is reported as
// [repositories.ErrConditionFailed].
//
// Create a [Store] with [New]. By default it builds an SDK v2 client from the
// supplied [aws.Config]; supply [WithAPI] to inject a fake.
package dynamo
