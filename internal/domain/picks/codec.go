package picks

import (
	"encoding/json"
	"fmt"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/model"
)

// legacyTimestamp is how older picks files stamped submissions.
const legacyTimestamp = "2006-01-02 15:04:05 MST"

// record is the stored form of a submission, keyed by user id.
type record struct {
	Name      string `json:"name"`
	Pick      string `json:"pick"`
	Timestamp string `json:"timestamp"`
}

type submissions = orderedmap.OrderedMap[string, model.Submission]

func decodeDocument(doc *repository.Document, loc *time.Location) (*submissions, error) {
	out := orderedmap.New[string, model.Submission]()
	for pair := doc.Oldest(); pair != nil; pair = pair.Next() {
		var rec record
		if err := json.Unmarshal(pair.Value, &rec); err != nil {
			return nil, fmt.Errorf("%w: picks[%s]: %w", repository.ErrCorrupt, pair.Key, err)
		}
		at, err := parseTimestamp(rec.Timestamp, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: picks[%s]: %w", repository.ErrCorrupt, pair.Key, err)
		}
		out.Set(pair.Key, model.Submission{
			UserID:      pair.Key,
			DisplayName: rec.Name,
			Pick:        rec.Pick,
			SubmittedAt: at,
		})
	}
	return out, nil
}

func encodeDocument(subs *submissions) (*repository.Document, error) {
	doc := repository.NewDocument()
	for pair := subs.Oldest(); pair != nil; pair = pair.Next() {
		raw, err := repository.MarshalValue(record{
			Name:      pair.Value.DisplayName,
			Pick:      pair.Value.Pick,
			Timestamp: pair.Value.SubmittedAt.Format(time.RFC3339),
		})
		if err != nil {
			return nil, fmt.Errorf("encode pick %s: %w", pair.Key, err)
		}
		doc.Set(pair.Key, raw)
	}
	return doc, nil
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation(legacyTimestamp, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	return t, nil
}
