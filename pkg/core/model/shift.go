package model

import "fmt"

// ShiftType identifies one of the daily shifts a worker can be assigned to
type ShiftType int

const (
	Early ShiftType = iota
	Middle
	Late
)

// NumShiftTypes is the number of shift types worked in a day
const NumShiftTypes = 3

// OffCode is the schedule code for a day on which a worker has no shift
const OffCode = -1

// ShiftTypes lists the shift types in their fixed scan order
var ShiftTypes = [NumShiftTypes]ShiftType{Early, Middle, Late}

func (s ShiftType) IsValid() bool {
	return s >= Early && s <= Late
}

// Code returns the integer code written to schedule tables
func (s ShiftType) Code() int {
	return int(s)
}

func (s ShiftType) String() string {
	switch s {
	case Early:
		return "early"
	case Middle:
		return "middle"
	case Late:
		return "late"
	default:
		return fmt.Sprintf("shift(%d)", int(s))
	}
}
