package domain

import "time"

// Unit is one entry of a user's registered-units list.
type Unit struct {
	Code  string `json:"code" dynamodbav:"code"`
	Title string `json:"title" dynamodbav:"title"`
}

type User struct {
	UserID           string    `json:"id" dynamodbav:"user_id"`
	Name             string    `json:"name" dynamodbav:"name"`
	Email            string    `json:"email" dynamodbav:"email"`
	FCMToken         string    `json:"fcmToken" dynamodbav:"fcm_token"`
	Course           string    `json:"course" dynamodbav:"course"`
	Campus           string    `json:"campus" dynamodbav:"campus"`
	School           string    `json:"school" dynamodbav:"school"`
	Department       string    `json:"department" dynamodbav:"department"`
	Year             string    `json:"year" dynamodbav:"year"`
	Semester         string    `json:"semester" dynamodbav:"semester"`
	RegisteredUnits  []Unit    `json:"registered_units" dynamodbav:"registered_units"`
	ProfileCompleted bool      `json:"profile_completed" dynamodbav:"profile_completed"`
	AppID            string    `json:"app_id,omitempty" dynamodbav:"app_id"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}

// HasToken reports whether the user has a usable device token.
func (u *User) HasToken() bool {
	return u.FCMToken != ""
}

// RegisteredFor reports whether the user's registered-units list contains
// an entry with the given unit code (exact match).
func (u *User) RegisteredFor(unitCode string) bool {
	for _, unit := range u.RegisteredUnits {
		if unit.Code == unitCode {
			return true
		}
	}
	return false
}

// UserFilters is an AND-conjunction of exact-match filters applied by the
// user store. Zero-value fields are not applied. There are no OR semantics.
type UserFilters struct {
	Course       string
	Campus       string
	School       string
	Department   string
	Year         string
	Semester     string
	RequireToken bool // only users with a non-empty device token
}
