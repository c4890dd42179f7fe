package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// User は認証に使用するユーザーレコードです。
// テーブル上に属性が存在しない場合、対応するフィールドは nil になります。
type User struct {
	Email        *string
	PasswordHash *string
}

// QueryUsersByEmail は email 完全一致でユーザーレコードを検索します。
func (c *Client) QueryUsersByEmail(ctx context.Context, email string) ([]User, error) {
	out, err := c.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.userTable),
		KeyConditionExpression: aws.String("email = :email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.userTable, err)
	}

	users := make([]User, 0, len(out.Items))
	for _, item := range out.Items {
		users = append(users, decodeUser(item))
	}
	return users, nil
}

// PutUser はユーザーレコードを保存します。同一メールアドレスのレコードは上書きされます。
func (c *Client) PutUser(ctx context.Context, email, passwordHash string) error {
	_, err := c.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.userTable),
		Item: map[string]types.AttributeValue{
			"email":         &types.AttributeValueMemberS{Value: email},
			"password_hash": &types.AttributeValueMemberS{Value: passwordHash},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put user into %s: %w", c.userTable, err)
	}
	return nil
}

// decodeUser は DynamoDB のアイテムを User に変換します。
func decodeUser(item map[string]types.AttributeValue) User {
	return User{
		Email:        stringAttr(item, "email"),
		PasswordHash: stringAttr(item, "password_hash"),
	}
}

// stringAttr は文字列属性を取り出します。欠損または文字列以外の型は nil を返します。
func stringAttr(item map[string]types.AttributeValue, name string) *string {
	attr, ok := item[name]
	if !ok {
		return nil
	}
	s, ok := attr.(*types.AttributeValueMemberS)
	if !ok || s.Value == "" {
		return nil
	}
	return aws.String(s.Value)
}
