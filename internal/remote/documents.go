package remote

import (
	"fmt"
	"time"

	"github.com/ldi/gotask/pkg/models"
	"google.golang.org/api/firestore/v1"
)

const nullValue = "NULL_VALUE"

// Document field names, shared with the mobile clients.
const (
	fieldID             = "id"
	fieldText           = "text"
	fieldDate           = "date"
	fieldCompleted      = "completed"
	fieldImportant      = "important"
	fieldPinned         = "pinned"
	fieldColor          = "color"
	fieldFontStyle      = "fontStyle"
	fieldFontWeight     = "fontWeight"
	fieldHighlight      = "highlight"
	fieldHighlightColor = "highlightColor"
	fieldCreatedAt      = "createdAt"
)

func boolValue(b bool) firestore.Value {
	// false is the zero value and would be dropped from the request body.
	return firestore.Value{BooleanValue: b, ForceSendFields: []string{"BooleanValue"}}
}

func stringValue(s string) firestore.Value {
	return firestore.Value{StringValue: s, ForceSendFields: []string{"StringValue"}}
}

func nullableString(s string) firestore.Value {
	if s == "" {
		return firestore.Value{NullValue: nullValue}
	}
	return stringValue(s)
}

func timestampValue(t time.Time) firestore.Value {
	return firestore.Value{TimestampValue: t.UTC().Format(time.RFC3339Nano)}
}

// toDocument converts a task to a document named name. Dates are written as
// timestamp values.
func toDocument(name string, t models.Task) *firestore.Document {
	return &firestore.Document{
		Name: name,
		Fields: map[string]firestore.Value{
			fieldID:             stringValue(t.ID),
			fieldText:           stringValue(t.Text),
			fieldDate:           timestampValue(t.Date),
			fieldCompleted:      boolValue(t.Completed),
			fieldImportant:      boolValue(t.Important),
			fieldPinned:         boolValue(t.Pinned),
			fieldColor:          stringValue(t.Color),
			fieldFontStyle:      nullableString(string(t.FontStyle)),
			fieldFontWeight:     nullableString(string(t.FontWeight)),
			fieldHighlight:      boolValue(t.Highlight),
			fieldHighlightColor: nullableString(t.HighlightColor),
			fieldCreatedAt:      timestampValue(t.CreatedAt),
		},
	}
}

// fromDocument converts a document back to a task. The id falls back to the
// last segment of the document name.
func fromDocument(doc *firestore.Document) (models.Task, error) {
	f := doc.Fields
	t := models.Task{
		ID:             f[fieldID].StringValue,
		Text:           f[fieldText].StringValue,
		Completed:      f[fieldCompleted].BooleanValue,
		Important:      f[fieldImportant].BooleanValue,
		Pinned:         f[fieldPinned].BooleanValue,
		Color:          f[fieldColor].StringValue,
		FontStyle:      models.FontStyle(f[fieldFontStyle].StringValue),
		FontWeight:     models.FontWeight(f[fieldFontWeight].StringValue),
		Highlight:      f[fieldHighlight].BooleanValue,
		HighlightColor: f[fieldHighlightColor].StringValue,
	}
	if t.ID == "" {
		t.ID = documentID(doc.Name)
	}

	var err error
	if t.Date, err = parseTime(f[fieldDate]); err != nil {
		return models.Task{}, fmt.Errorf("failed to parse date of %s: %w", t.ID, err)
	}
	if t.CreatedAt, err = parseTime(f[fieldCreatedAt]); err != nil {
		return models.Task{}, fmt.Errorf("failed to parse createdAt of %s: %w", t.ID, err)
	}
	return t, nil
}

// parseTime accepts timestamp values and, for documents written by older
// clients, RFC 3339 strings. A missing field is the zero time.
func parseTime(v firestore.Value) (time.Time, error) {
	raw := v.TimestampValue
	if raw == "" {
		raw = v.StringValue
	}
	if raw == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, err
	}
	return ts.Local(), nil
}

func documentID(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			return name[i+1:]
		}
	}
	return name
}
