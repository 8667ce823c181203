package models

import "time"

// Territory types. Rural territories do not track house-level granularity,
// so congregation house/quadra sums exclude them.
const (
	TerritoryTypeUrban = "urban"
	TerritoryTypeRural = "rural"
)

// Identity used for automatically generated activity entries.
const (
	ActivityTypeWork   = "work"
	ActivityTypeManual = "manual"
	SystemUserID       = "automatic_system_log"
	SystemUserName     = "Sistema"
)

// Congregation is the tenant root. All counter fields are denormalized
// rollups over its urban territories; rural territories only contribute to
// RuralTerritoryCount.
type Congregation struct {
	Name                string    `firestore:"name,omitempty"`
	Number              string    `firestore:"number,omitempty"` // public join-code
	TerritoryCount      int       `firestore:"territoryCount"`
	RuralTerritoryCount int       `firestore:"ruralTerritoryCount"`
	TotalQuadras        int       `firestore:"totalQuadras"`
	TotalHouses         int       `firestore:"totalHouses"`
	TotalHousesDone     int       `firestore:"totalHousesDone"`
	LastUpdate          time.Time `firestore:"lastUpdate,omitempty"`
}

// TerritoryStats is the denormalized rollup over a territory's quadras.
type TerritoryStats struct {
	TotalHouses int `firestore:"totalHouses"`
	HousesDone  int `firestore:"housesDone"`
}

// Assignment records who currently holds a territory.
type Assignment struct {
	UID        string    `firestore:"uid,omitempty"`
	Name       string    `firestore:"name,omitempty"`
	AssignedAt time.Time `firestore:"assignedAt,omitempty"`
	DueDate    time.Time `firestore:"dueDate,omitempty"`
}

type Territory struct {
	Number            string         `firestore:"number,omitempty"`
	Name              string         `firestore:"name,omitempty"`
	Type              string         `firestore:"type,omitempty"` // urban when unset
	Stats             TerritoryStats `firestore:"stats"`
	Progress          float64        `firestore:"progress"`
	QuadraCount       int            `firestore:"quadraCount"`
	Assignment        *Assignment    `firestore:"assignment,omitempty"`
	AssignmentHistory []Assignment   `firestore:"assignmentHistory,omitempty"` // append-only, completed assignments
	LastUpdate        time.Time      `firestore:"lastUpdate,omitempty"`
}

type Quadra struct {
	Name        string `firestore:"name,omitempty"`
	Description string `firestore:"description,omitempty"`
	TotalHouses int    `firestore:"totalHouses"`
	HousesDone  int    `firestore:"housesDone"`
}

// Casa is the leaf entity whose writes drive the whole propagation chain.
type Casa struct {
	Number       string `firestore:"number,omitempty"`
	Observations string `firestore:"observations,omitempty"`
	Status       bool   `firestore:"status"`
	Order        int    `firestore:"order,omitempty"`
	LastWorkedBy string `firestore:"lastWorkedBy,omitempty"`
}

// ActivityEntry lives in a territory's activityHistory subcollection.
// Automatic entries use a deterministic document ID derived from the
// calendar day, which is what makes them at-most-once per day.
type ActivityEntry struct {
	Type            string    `firestore:"type"`
	ActivityDate    time.Time `firestore:"activityDate,serverTimestamp"`
	ActivityDateStr string    `firestore:"activityDateStr"`
	Description     string    `firestore:"description"`
	UserID          string    `firestore:"userId"`
	UserName        string    `firestore:"userName"`
}

// UserProfile is the durable record fed by the presence mirror.
type UserProfile struct {
	Name      string    `firestore:"name,omitempty"`
	IsOnline  bool      `firestore:"isOnline"`
	LastSeen  time.Time `firestore:"lastSeen,omitempty"`
	FCMTokens []string  `firestore:"fcmTokens,omitempty"`
}
