package chrono

import (
	"time"
)

var warsaw *time.Location

func init() {
	var err error
	warsaw, err = time.LoadLocation("Europe/Warsaw")
	if err != nil {
		panic(err)
	}
}

// Warsaw returns a [*time.Location] for Europe/Warsaw, the canteen's timezone.
func Warsaw() *time.Location {
	return warsaw
}

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in Europe/Warsaw.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now().In(warsaw)
}

// FixedTime is a TimeAPI that always returns the same instant.
type FixedTime struct {
	Time time.Time
}

func (f FixedTime) Now() time.Time {
	return f.Time
}
