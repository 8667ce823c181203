package services

import (
	"time"

	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
)

// Typed accessors over the protobuf document snapshots carried by Firestore
// trigger payloads. All of them tolerate nil documents and missing fields,
// returning zero values, so callers can express transitions without
// nil-checking every level of the payload.

func field(doc *firestoredata.Document, key string) *firestoredata.Value {
	if doc == nil {
		return nil
	}
	return doc.GetFields()[key]
}

func fieldString(doc *firestoredata.Document, key string) string {
	return field(doc, key).GetStringValue()
}

func fieldBool(doc *firestoredata.Document, key string) bool {
	return field(doc, key).GetBooleanValue()
}

func mapField(doc *firestoredata.Document, key, sub string) *firestoredata.Value {
	m := field(doc, key).GetMapValue()
	if m == nil {
		return nil
	}
	return m.GetFields()[sub]
}

// eventDocumentName returns the resource name of the document the event is
// about, falling back to the pre-image when the document was deleted.
func eventDocumentName(data *firestoredata.DocumentEventData) string {
	if v := data.GetValue(); v != nil {
		return v.GetName()
	}
	return data.GetOldValue().GetName()
}

// workedTransition reports whether an update flipped a casa's status from
// not worked to worked. Creations and deletions never count.
func workedTransition(oldDoc, newDoc *firestoredata.Document) bool {
	if oldDoc == nil || newDoc == nil {
		return false
	}
	return !fieldBool(oldDoc, "status") && fieldBool(newDoc, "status")
}

// assignmentChange reports the newly designated uid when a territory update
// changed who holds the assignment. Returning-a-territory updates (no
// assignment afterwards) and unrelated edits report no change.
func assignmentChange(oldDoc, newDoc *firestoredata.Document) (string, bool) {
	newUID := mapField(newDoc, "assignment", "uid").GetStringValue()
	if newUID == "" {
		return "", false
	}
	if mapField(oldDoc, "assignment", "uid").GetStringValue() == newUID {
		return "", false
	}
	return newUID, true
}

func assignmentDueDate(doc *firestoredata.Document) time.Time {
	ts := mapField(doc, "assignment", "dueDate").GetTimestampValue()
	if ts == nil {
		return time.Time{}
	}
	return ts.AsTime()
}

// territoryDisplayName prefers the territory's name and falls back to its
// number for territories that were never named.
func territoryDisplayName(doc *firestoredata.Document) string {
	if name := fieldString(doc, "name"); name != "" {
		return name
	}
	return fieldString(doc, "number")
}
