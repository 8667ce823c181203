package services

import (
	"testing"
	"time"

	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Payload construction helpers shared by the package tests.

func strVal(s string) *firestoredata.Value {
	return &firestoredata.Value{ValueType: &firestoredata.Value_StringValue{StringValue: s}}
}

func boolVal(b bool) *firestoredata.Value {
	return &firestoredata.Value{ValueType: &firestoredata.Value_BooleanValue{BooleanValue: b}}
}

func tsVal(t time.Time) *firestoredata.Value {
	return &firestoredata.Value{ValueType: &firestoredata.Value_TimestampValue{TimestampValue: timestamppb.New(t)}}
}

func mapVal(fields map[string]*firestoredata.Value) *firestoredata.Value {
	return &firestoredata.Value{ValueType: &firestoredata.Value_MapValue{MapValue: &firestoredata.MapValue{Fields: fields}}}
}

func casaDoc(status bool) *firestoredata.Document {
	return &firestoredata.Document{
		Name:   docPrefix + "congregations/c1/territories/t1/quadras/q1/casas/h1",
		Fields: map[string]*firestoredata.Value{"status": boolVal(status)},
	}
}

func territoryDocSnapshot(name string, assignment map[string]*firestoredata.Value) *firestoredata.Document {
	fields := map[string]*firestoredata.Value{"number": strVal("12")}
	if name != "" {
		fields["name"] = strVal(name)
	}
	if assignment != nil {
		fields["assignment"] = mapVal(assignment)
	}
	return &firestoredata.Document{
		Name:   docPrefix + "congregations/c1/territories/t1",
		Fields: fields,
	}
}

func TestWorkedTransition(t *testing.T) {
	if !workedTransition(casaDoc(false), casaDoc(true)) {
		t.Fatal("expected false->true to be a worked transition")
	}
	if workedTransition(casaDoc(true), casaDoc(false)) {
		t.Fatal("true->false must not be a worked transition")
	}
	if workedTransition(casaDoc(true), casaDoc(true)) {
		t.Fatal("an unrelated edit of a worked casa must not be a worked transition")
	}
	if workedTransition(nil, casaDoc(true)) {
		t.Fatal("a creation must not be a worked transition")
	}
	if workedTransition(casaDoc(true), nil) {
		t.Fatal("a deletion must not be a worked transition")
	}
}

func TestWorkedTransition_MissingStatusField(t *testing.T) {
	bare := &firestoredata.Document{Name: casaDoc(false).GetName()}
	if !workedTransition(bare, casaDoc(true)) {
		t.Fatal("an absent status field reads as false, so the transition counts")
	}
	if workedTransition(casaDoc(false), bare) {
		t.Fatal("transition to an absent status field must not count")
	}
}

func TestAssignmentChange(t *testing.T) {
	assignedToAna := territoryDocSnapshot("Centro", map[string]*firestoredata.Value{"uid": strVal("ana")})
	assignedToRui := territoryDocSnapshot("Centro", map[string]*firestoredata.Value{"uid": strVal("rui")})
	unassigned := territoryDocSnapshot("Centro", nil)

	uid, changed := assignmentChange(unassigned, assignedToAna)
	if !changed || uid != "ana" {
		t.Fatalf("expected change to ana, got changed=%v uid=%q", changed, uid)
	}

	uid, changed = assignmentChange(assignedToAna, assignedToRui)
	if !changed || uid != "rui" {
		t.Fatalf("expected change to rui, got changed=%v uid=%q", changed, uid)
	}

	if _, changed = assignmentChange(assignedToAna, assignedToAna); changed {
		t.Fatal("same uid must not report a change")
	}
	if _, changed = assignmentChange(assignedToAna, unassigned); changed {
		t.Fatal("returning a territory must not report a change")
	}
	if _, changed = assignmentChange(nil, unassigned); changed {
		t.Fatal("creation without assignment must not report a change")
	}
}

func TestAssignmentDueDate(t *testing.T) {
	due := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	doc := territoryDocSnapshot("Centro", map[string]*firestoredata.Value{
		"uid":     strVal("ana"),
		"dueDate": tsVal(due),
	})

	if got := assignmentDueDate(doc); !got.Equal(due) {
		t.Fatalf("expected due date %v, got %v", due, got)
	}
	if got := assignmentDueDate(territoryDocSnapshot("Centro", nil)); !got.IsZero() {
		t.Fatalf("expected zero due date without assignment, got %v", got)
	}
}

func TestTerritoryDisplayName(t *testing.T) {
	if name := territoryDisplayName(territoryDocSnapshot("Centro", nil)); name != "Centro" {
		t.Fatalf("expected Centro, got %q", name)
	}
	if name := territoryDisplayName(territoryDocSnapshot("", nil)); name != "12" {
		t.Fatalf("expected fallback to number 12, got %q", name)
	}
}

func TestEventDocumentName(t *testing.T) {
	doc := casaDoc(true)

	written := &firestoredata.DocumentEventData{Value: doc}
	if got := eventDocumentName(written); got != doc.GetName() {
		t.Fatalf("expected %q, got %q", doc.GetName(), got)
	}

	deleted := &firestoredata.DocumentEventData{OldValue: doc}
	if got := eventDocumentName(deleted); got != doc.GetName() {
		t.Fatalf("expected pre-image name %q for deletes, got %q", doc.GetName(), got)
	}
}
