package dynamo

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// messageKeysQuery selects only the primary key of every message in a match.
func messageKeysQuery(table, matchID string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:              aws.String(table),
		KeyConditionExpression: aws.String("#matchId = :matchId"),
		ProjectionExpression:   aws.String("#matchId, SK"),
		ExpressionAttributeNames: map[string]string{
			"#matchId": "matchId",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":matchId": &types.AttributeValueMemberS{Value: matchID},
		},
	}
}
