package notion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/buyergroup-cli/internal/model"
)

// QueryAll fetches all pages from a Notion database, handling pagination.
// Rate limiting is enforced by the Client (3 req/s by default).
func QueryAll(ctx context.Context, c Client, dbID string, filter *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var all []notionapi.Page

	req := &notionapi.DatabaseQueryRequest{}
	if filter != nil {
		req.Filter = filter.Filter
		req.Sorts = filter.Sorts
		req.PageSize = filter.PageSize
	}

	for {
		resp, err := c.QueryDatabase(ctx, dbID, req)
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all page")
		}

		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}
		req = &notionapi.DatabaseQueryRequest{StartCursor: resp.NextCursor}
		if filter != nil {
			req.Filter = filter.Filter
			req.Sorts = filter.Sorts
			req.PageSize = filter.PageSize
		}
	}

	return all, nil
}

// FindGroupPage returns the existing page for a run, or "" when none exists.
// Pages are keyed by the "Run ID" rich_text property.
func FindGroupPage(ctx context.Context, c Client, dbID, runID string) (string, error) {
	resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Run ID",
			RichText: &notionapi.TextFilterCondition{
				Equals: runID,
			},
		},
	})
	if err != nil {
		return "", eris.Wrapf(err, "notion: find group page for run %s", runID)
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return string(resp.Results[0].ID), nil
}

// ExportGroup publishes a buyer group to the team database. If a page for
// the run already exists its properties are updated in place, otherwise a
// new page is created. Returns the page ID.
func ExportGroup(ctx context.Context, c Client, dbID string, group *model.BuyerGroup) (string, error) {
	props := groupProperties(group)

	pageID, err := FindGroupPage(ctx, c, dbID, group.RunID)
	if err != nil {
		return "", err
	}

	if pageID != "" {
		_, err := c.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{Properties: props})
		if err != nil {
			return "", eris.Wrapf(err, "notion: update group page %s", pageID)
		}
		return pageID, nil
	}

	page, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(dbID),
		},
		Properties: props,
		Children:   memberBlocks(group),
	})
	if err != nil {
		return "", eris.Wrapf(err, "notion: export group for run %s", group.RunID)
	}
	return string(page.ID), nil
}

// groupProperties converts a buyer group to Notion page properties.
func groupProperties(group *model.BuyerGroup) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: group.Company.Name}},
			},
		},
		"Run ID":    richText(group.RunID),
		"Domain":    richText(group.Company.Domain),
		"Tier":      richText(group.Tier),
		"Deal Size": notionapi.NumberProperty{Type: notionapi.PropertyTypeNumber, Number: group.DealSize},
		"Members":   notionapi.NumberProperty{Type: notionapi.PropertyTypeNumber, Number: float64(group.Size())},
		"Score":     notionapi.NumberProperty{Type: notionapi.PropertyTypeNumber, Number: float64(group.Score)},
		"Status": notionapi.StatusProperty{
			Status: notionapi.Status{Name: statusName(group)},
		},
	}
	if group.Action != "" {
		props["Action"] = richText(group.Action)
	}
	return props
}

func statusName(group *model.BuyerGroup) string {
	if group.Valid {
		return "Valid"
	}
	return "Needs Review"
}

// memberBlocks renders one bulleted list item per member.
func memberBlocks(group *model.BuyerGroup) []notionapi.Block {
	blocks := make([]notionapi.Block, 0, len(group.Members))
	for _, m := range group.Members {
		line := fmt.Sprintf("%s (%s): %s",
			strings.ToUpper(string(m.Role)), m.Candidate.Title, m.Candidate.FullName)
		blocks = append(blocks, &notionapi.BulletedListItemBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeBulletedListItem,
			},
			BulletedListItem: notionapi.ListItem{
				RichText: []notionapi.RichText{
					{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: line}},
				},
			},
		})
	}
	return blocks
}

func richText(v string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type: notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: v}},
		},
	}
}
