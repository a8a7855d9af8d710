package models

import "time"

// DigestSubscription represents a user who has opted into weekly progress digests
type DigestSubscription struct {
	UserID          string     `bson:"userId" json:"userId"`
	Email           string     `bson:"email" json:"email"`
	Timezone        string     `bson:"timezone,omitempty" json:"timezone,omitempty"`
	OptedInAt       time.Time  `bson:"optedInAt" json:"optedInAt"`
	NextTriggerTime *time.Time `bson:"nextTriggerTime,omitempty" json:"nextTriggerTime,omitempty"` // Optional override for testing
}
