package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Release は1件のリリース情報です。
// このシステムからは読み取り専用の投影で、欠損した属性は nil（JSONではnull）になります。
type Release struct {
	Artist    *string `json:"artist"`
	Date      *string `json:"date"`
	Label     *string `json:"label"`
	Link      *string `json:"link"`
	CoverLink *string `json:"coverLink"`
	Title     *string `json:"title"`
}

// QueryReleasesByOwner は所有者メールアドレス完全一致でリリースレコードを検索します。
func (c *Client) QueryReleasesByOwner(ctx context.Context, email string) ([]Release, error) {
	out, err := c.db.Query(ctx, &dynamodb.QueryInput{
		TableName: aws.String(c.releaseTable),
		// "to" は DynamoDB の予約語のためプレースホルダーで参照する
		KeyConditionExpression: aws.String("#to = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#to": "to",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.releaseTable, err)
	}

	releases := make([]Release, 0, len(out.Items))
	for _, item := range out.Items {
		releases = append(releases, decodeRelease(item))
	}
	return releases, nil
}

// PutRelease はリリースレコードを保存します。
func (c *Client) PutRelease(ctx context.Context, owner string, release Release) error {
	item := map[string]types.AttributeValue{
		"to": &types.AttributeValueMemberS{Value: owner},
	}
	setStringAttr(item, "date", release.Date)
	setStringAttr(item, "label", release.Label)
	setStringAttr(item, "title", release.Title)
	setStringAttr(item, "link", release.Link)
	setStringAttr(item, "cover_link", release.CoverLink)
	// アーティストはメールに含まれないことがあるため NULL を許容する
	if release.Artist != nil {
		item["artist"] = &types.AttributeValueMemberS{Value: *release.Artist}
	} else {
		item["artist"] = &types.AttributeValueMemberNULL{Value: true}
	}

	_, err := c.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.releaseTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put release into %s: %w", c.releaseTable, err)
	}
	return nil
}

// decodeRelease は DynamoDB のアイテムを Release に変換します。
func decodeRelease(item map[string]types.AttributeValue) Release {
	return Release{
		Artist:    stringAttr(item, "artist"),
		Date:      stringAttr(item, "date"),
		Label:     stringAttr(item, "label"),
		Link:      stringAttr(item, "link"),
		CoverLink: stringAttr(item, "cover_link"),
		Title:     stringAttr(item, "title"),
	}
}

func setStringAttr(item map[string]types.AttributeValue, name string, value *string) {
	if value == nil {
		return
	}
	item[name] = &types.AttributeValueMemberS{Value: *value}
}
