package services

import (
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
)

// Collection layout: congregations/{id}/territories/{id}/quadras/{id}/casas/{id},
// with activityHistory under each territory and a top-level users collection.
const (
	collCongregations   = "congregations"
	collTerritories     = "territories"
	collQuadras         = "quadras"
	collCasas           = "casas"
	collActivityHistory = "activityHistory"
	collUsers           = "users"
)

// TerritoryPath identifies one territory within its congregation.
type TerritoryPath struct {
	Congregation string
	Territory    string
}

// QuadraPath identifies one quadra within its territory.
type QuadraPath struct {
	Congregation string
	Territory    string
	Quadra       string
}

// CasaPath identifies one casa within its quadra.
type CasaPath struct {
	Congregation string
	Territory    string
	Quadra       string
	Casa         string
}

func (p QuadraPath) TerritoryPath() TerritoryPath {
	return TerritoryPath{Congregation: p.Congregation, Territory: p.Territory}
}

func (p CasaPath) QuadraPath() QuadraPath {
	return QuadraPath{Congregation: p.Congregation, Territory: p.Territory, Quadra: p.Quadra}
}

func (p CasaPath) TerritoryPath() TerritoryPath {
	return TerritoryPath{Congregation: p.Congregation, Territory: p.Territory}
}

// documentPath strips the "projects/{p}/databases/{db}/documents/" prefix
// from a fully qualified Firestore resource name.
func documentPath(name string) (string, error) {
	const marker = "/documents/"
	i := strings.Index(name, marker)
	if i < 0 {
		return "", fmt.Errorf("not a firestore document name: %q", name)
	}
	return name[i+len(marker):], nil
}

func parseTerritoryPath(name string) (TerritoryPath, error) {
	rel, err := documentPath(name)
	if err != nil {
		return TerritoryPath{}, err
	}
	parts := strings.Split(rel, "/")
	if len(parts) != 4 || parts[0] != collCongregations || parts[2] != collTerritories {
		return TerritoryPath{}, fmt.Errorf("unexpected territory document path: %q", rel)
	}
	return TerritoryPath{Congregation: parts[1], Territory: parts[3]}, nil
}

func parseQuadraPath(name string) (QuadraPath, error) {
	rel, err := documentPath(name)
	if err != nil {
		return QuadraPath{}, err
	}
	parts := strings.Split(rel, "/")
	if len(parts) != 6 || parts[0] != collCongregations || parts[2] != collTerritories || parts[4] != collQuadras {
		return QuadraPath{}, fmt.Errorf("unexpected quadra document path: %q", rel)
	}
	return QuadraPath{Congregation: parts[1], Territory: parts[3], Quadra: parts[5]}, nil
}

func parseCasaPath(name string) (CasaPath, error) {
	rel, err := documentPath(name)
	if err != nil {
		return CasaPath{}, err
	}
	parts := strings.Split(rel, "/")
	if len(parts) != 8 || parts[0] != collCongregations || parts[2] != collTerritories || parts[4] != collQuadras || parts[6] != collCasas {
		return CasaPath{}, fmt.Errorf("unexpected casa document path: %q", rel)
	}
	return CasaPath{Congregation: parts[1], Territory: parts[3], Quadra: parts[5], Casa: parts[7]}, nil
}

func congregationDoc(client *firestore.Client, id string) *firestore.DocumentRef {
	return client.Collection(collCongregations).Doc(id)
}

func territoryDoc(client *firestore.Client, p TerritoryPath) *firestore.DocumentRef {
	return congregationDoc(client, p.Congregation).Collection(collTerritories).Doc(p.Territory)
}

func quadraDoc(client *firestore.Client, p QuadraPath) *firestore.DocumentRef {
	return territoryDoc(client, p.TerritoryPath()).Collection(collQuadras).Doc(p.Quadra)
}

// UIDFromSubject extracts the user ID from a Realtime Database CloudEvent
// subject of the form "refs/status/{uid}".
func UIDFromSubject(subject string) (string, error) {
	parts := strings.Split(subject, "/")
	if len(parts) != 3 || parts[0] != "refs" || parts[1] != "status" || parts[2] == "" {
		return "", fmt.Errorf("unexpected presence subject: %q", subject)
	}
	return parts[2], nil
}
