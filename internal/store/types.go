// Package store is the relational data access layer. Functions take a
// pgxpool.Pool and call the prepared statements registered in internal/db.
package store

import "time"

// User roles.
const (
	RolePatient   = "patient"
	RoleCaregiver = "caregiver"
)

// User is an account holder. Role is "patient" or "caregiver".
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Medication is a scheduled medication owned by one user. Times are
// wall-clock "HH:MM" strings in the server's local time.
type Medication struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Name            string     `json:"name"`
	Dosage          string     `json:"dosage"`
	PillType        string     `json:"pillType"`
	ImageURL        string     `json:"imageUrl"`
	Times           []string   `json:"times"`
	PillsRemaining  int        `json:"pillsRemaining"`
	RefillThreshold int        `json:"refillThreshold"`
	LastRefillDate  *time.Time `json:"lastRefillDate,omitempty"`
}

// MedicationLog records a taken or missed dose.
type MedicationLog struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	MedicationID    string     `json:"medicationId"`
	MedicationName  string     `json:"medicationName"`
	ScheduledTime   string     `json:"scheduledTime"`
	TakenTime       *time.Time `json:"takenTime,omitempty"`
	Status          string     `json:"status"` // taken | missed
	Confidence      *int       `json:"confidence,omitempty"`
	ScannedPillType *string    `json:"scannedPillType,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Subscription is a user's web push subscription. At most one per user; a
// second subscribe overwrites the first.
type Subscription struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Endpoint       string     `json:"endpoint"`
	P256dh         string     `json:"p256dh"`
	Auth           string     `json:"auth"`
	ExpirationTime *time.Time `json:"expirationTime,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Survey is a post-dose check-in.
type Survey struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	MedicationLogID string    `json:"medicationLogId"`
	Mood            string    `json:"mood"`
	SideEffects     []string  `json:"sideEffects"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Caregiver is a contact linked to a patient account.
type Caregiver struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Relationship string    `json:"relationship"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	NotifyMissed bool      `json:"notifyMissed"`
	CreatedAt    time.Time `json:"createdAt"`
}
