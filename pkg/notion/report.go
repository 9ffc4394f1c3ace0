package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dedupe-cli/internal/model"
)

// PublishReport creates one page per candidate pair in the review database.
// Pairs already present (matched by the Key property) are skipped, so
// re-running a scan does not duplicate report rows. Returns the number of
// pages created.
func PublishReport(ctx context.Context, c Client, dbID string, pairs []model.CandidatePair) (int, error) {
	log := zap.L().With(zap.String("component", "notion-report"))

	existing, err := existingKeys(ctx, c, dbID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, p := range pairs {
		key := pairKeyString(p.Key())
		if existing[key] {
			continue
		}
		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(dbID),
			},
			Properties: pairProperties(p, key),
		}
		if _, err := c.CreatePage(ctx, req); err != nil {
			return created, eris.Wrap(err, fmt.Sprintf("notion: publish pair %s", key))
		}
		created++
	}

	log.Info("published scan report",
		zap.String("database", dbID),
		zap.Int("pairs", len(pairs)),
		zap.Int("created", created),
		zap.Int("skipped", len(pairs)-created),
	)
	return created, nil
}

// MarkResolved sets the report row for the given pair to the Resolved status.
// Missing rows are ignored, reports are advisory.
func MarkResolved(ctx context.Context, c Client, dbID string, key model.PairKey) error {
	page, err := findByKey(ctx, c, dbID, pairKeyString(key))
	if err != nil {
		return err
	}
	if page == nil {
		return nil
	}
	_, err = c.UpdatePage(ctx, page.ID.String(), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			"Status": notionapi.StatusProperty{
				Status: notionapi.Status{Name: "Resolved"},
			},
		},
	})
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("notion: mark pair %s resolved", pairKeyString(key)))
	}
	return nil
}

func pairProperties(p model.CandidatePair, key string) notionapi.Properties {
	return notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{
					Content: fmt.Sprintf("%s / %s", pairLabel(p.A), pairLabel(p.B)),
				}},
			},
		},
		"Key": notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: key}},
			},
		},
		"Score": notionapi.NumberProperty{
			Number: float64(p.Score),
		},
		"Reason": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(p.Reason)},
		},
		"Status": notionapi.StatusProperty{
			Status: notionapi.Status{Name: "Pending"},
		},
	}
}

// pairLabel prefers the contact's name, then email, then the raw ID.
func pairLabel(c model.Contact) string {
	if name := c.FullName(); name != "" {
		return name
	}
	if c.Email != "" {
		return c.Email
	}
	return c.ID
}

func pairKeyString(key model.PairKey) string {
	return key.Lo + ":" + key.Hi
}

func existingKeys(ctx context.Context, c Client, dbID string) (map[string]bool, error) {
	pages, err := QueryAll(ctx, c, dbID, nil)
	if err != nil {
		return nil, eris.Wrap(err, "notion: list report rows")
	}
	keys := make(map[string]bool, len(pages))
	for i := range pages {
		if k := keyProperty(&pages[i]); k != "" {
			keys[k] = true
		}
	}
	return keys, nil
}

func findByKey(ctx context.Context, c Client, dbID, key string) (*notionapi.Page, error) {
	resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Key",
			RichText: &notionapi.TextFilterCondition{Equals: key},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("notion: find report row %s", key))
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

func keyProperty(page *notionapi.Page) string {
	prop, ok := page.Properties["Key"]
	if !ok {
		return ""
	}
	rt, ok := prop.(*notionapi.RichTextProperty)
	if !ok || len(rt.RichText) == 0 {
		return ""
	}
	return rt.RichText[0].PlainText
}
