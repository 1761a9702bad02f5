package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamp is a point in time serialized as Unix seconds.
type Timestamp time.Time

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(time.Unix(t.Unix(), 0).UTC())
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Timestamp) String() string {
	return strconv.FormatInt(t.Unix(), 10)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	ts := time.Time(t).Unix()
	stamp := fmt.Sprint(ts)
	return []byte(stamp), nil
}

// UnmarshalJSON accepts both a bare number and a quoted number.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	ts, err := strconv.ParseInt(strings.Trim(string(b), `"`), 10, 64)
	if err != nil {
		return err
	}

	*t = Timestamp(time.Unix(ts, 0).UTC())
	return nil
}
