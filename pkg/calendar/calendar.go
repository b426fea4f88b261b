package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

type Unit string

const (
	UnitSecond Unit = "s"
	UnitMinute Unit = "m"
	UnitHour   Unit = "h"
	UnitDay    Unit = "d"
	UnitMonth  Unit = "mo"
)

// Offset is a calendar offset such as "2 days" or "1 month".
type Offset struct {
	Unit  Unit
	Value int
}

func Seconds(n int) Offset { return Offset{Unit: UnitSecond, Value: n} }
func Minutes(n int) Offset { return Offset{Unit: UnitMinute, Value: n} }
func Hours(n int) Offset   { return Offset{Unit: UnitHour, Value: n} }
func Days(n int) Offset    { return Offset{Unit: UnitDay, Value: n} }
func Months(n int) Offset  { return Offset{Unit: UnitMonth, Value: n} }

// AddTo returns t shifted by the offset. Days and months follow calendar
// arithmetic in t's location, so a day is not always 24 hours.
func (o Offset) AddTo(t time.Time) time.Time {
	switch o.Unit {
	case UnitSecond:
		return t.Add(time.Duration(o.Value) * time.Second)
	case UnitMinute:
		return t.Add(time.Duration(o.Value) * time.Minute)
	case UnitHour:
		return t.Add(time.Duration(o.Value) * time.Hour)
	case UnitDay:
		return t.AddDate(0, 0, o.Value)
	case UnitMonth:
		return t.AddDate(0, o.Value, 0)
	}
	return t
}

func (o Offset) String() string {
	return strconv.Itoa(o.Value) + string(o.Unit)
}

var offsetRegexp = regexp.MustCompile(`^(-?\d+)(s|m|h|d|mo)$`)

// Parse parses offsets like "30s", "15m", "2h", "1d", "-2d" and "3mo".
func Parse(s string) (Offset, error) {
	matches := offsetRegexp.FindStringSubmatch(s)
	if matches == nil {
		return Offset{}, fmt.Errorf("invalid offset: '%s'", s)
	}
	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return Offset{}, fmt.Errorf("invalid offset: '%s'", s)
	}
	return Offset{Unit: Unit(matches[2]), Value: value}, nil
}
