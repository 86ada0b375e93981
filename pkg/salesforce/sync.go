package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/buyergroup-cli/internal/model"
)

// SyncResult summarizes one group sync.
type SyncResult struct {
	Inserted int
	Updated  int
	Skipped  int
}

// contactRecord mirrors the Contact fields the sync reads back.
type contactRecord struct {
	Id    string
	Email string
}

// SyncGroup pushes buyer-group members to Salesforce as Contacts, keyed by
// email. Members without an email are skipped. Existing contacts get their
// Title and Buyer_Group_Role__c refreshed; new ones are inserted in one
// collection call.
func SyncGroup(ctx context.Context, c Client, group *model.BuyerGroup) (*SyncResult, error) {
	var result SyncResult

	emails := make([]string, 0, len(group.Members))
	for _, m := range group.Members {
		if m.Candidate.Email == "" {
			result.Skipped++
			continue
		}
		emails = append(emails, m.Candidate.Email)
	}
	if len(emails) == 0 {
		return &result, nil
	}

	existing, err := queryContactsByEmail(ctx, c, emails)
	if err != nil {
		return nil, err
	}

	var inserts []map[string]any
	var updates []CollectionRecord
	for _, m := range group.Members {
		if m.Candidate.Email == "" {
			continue
		}
		fields := contactFields(m)
		if id, ok := existing[strings.ToLower(m.Candidate.Email)]; ok {
			updates = append(updates, CollectionRecord{ID: id, Fields: fields})
		} else {
			first, last := splitName(m.Candidate.FullName)
			fields["FirstName"] = first
			fields["LastName"] = last
			fields["Email"] = m.Candidate.Email
			inserts = append(inserts, fields)
		}
	}

	if len(inserts) > 0 {
		results, err := c.InsertCollection(ctx, "Contact", inserts)
		if err != nil {
			return nil, eris.Wrap(err, "sf: sync insert contacts")
		}
		result.Inserted = countSuccesses(results, "insert")
	}
	if len(updates) > 0 {
		results, err := c.UpdateCollection(ctx, "Contact", updates)
		if err != nil {
			return nil, eris.Wrap(err, "sf: sync update contacts")
		}
		result.Updated = countSuccesses(results, "update")
	}

	zap.L().Info("salesforce sync complete",
		zap.String("run_id", group.RunID),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	return &result, nil
}

// queryContactsByEmail maps lowercase emails to existing Contact IDs.
func queryContactsByEmail(ctx context.Context, c Client, emails []string) (map[string]string, error) {
	quoted := make([]string, len(emails))
	for i, e := range emails {
		quoted[i] = "'" + strings.ReplaceAll(e, "'", "\\'") + "'"
	}
	soql := fmt.Sprintf("SELECT Id, Email FROM Contact WHERE Email IN (%s)", strings.Join(quoted, ", "))

	var records []contactRecord
	if err := c.Query(ctx, soql, &records); err != nil {
		return nil, eris.Wrap(err, "sf: query existing contacts")
	}

	existing := make(map[string]string, len(records))
	for _, r := range records {
		existing[strings.ToLower(r.Email)] = r.Id
	}
	return existing, nil
}

func contactFields(m model.Member) map[string]any {
	fields := map[string]any{
		"Title":               m.Candidate.Title,
		"Buyer_Group_Role__c": string(m.Role),
	}
	if m.Candidate.Phone != "" {
		fields["Phone"] = m.Candidate.Phone
	}
	return fields
}

// splitName splits a full name into first and last. Single-token names
// land in LastName, which Salesforce requires.
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", "Unknown"
	case 1:
		return "", parts[0]
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func countSuccesses(results []CollectionResult, op string) int {
	n := 0
	for _, r := range results {
		if r.Success {
			n++
			continue
		}
		zap.L().Warn("salesforce contact "+op+" failed",
			zap.String("id", r.ID),
			zap.Strings("errors", r.Errors),
		)
	}
	return n
}
