package sigarrascrape

import (
	"time"
	_ "time/tzdata"
)

// Location is the time zone SIGARRA prints dates and times in.
var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Lisbon")
	if err != nil {
		panic(err)
	}
}
