package model

// Rules are the labour rules applied to every worker of a run
type Rules struct {
	MinShiftsPerWorker int `yaml:"minShiftsPerWorker" validate:"min=0"`
	MaxShiftsPerWorker int `yaml:"maxShiftsPerWorker" validate:"min=0,gtefield=MinShiftsPerWorker"`

	// MinShiftLength is the shortest run of consecutive days on the same shift type
	MinShiftLength int `yaml:"minShiftLength" validate:"min=1"`

	// MaxShiftLength is the longest run of consecutive days on the same shift type
	MaxShiftLength int `yaml:"maxShiftLength" validate:"min=1,gtefield=MinShiftLength"`

	// MinFreeLength is the shortest break from a shift type once a run of it ends
	MinFreeLength int `yaml:"minFreeLength" validate:"min=1"`
}

// DefaultRules returns the rules used for a monthly roster when none are configured
func DefaultRules() Rules {
	return Rules{
		MinShiftsPerWorker: 21,
		MaxShiftsPerWorker: 23,
		MinShiftLength:     2,
		MaxShiftLength:     7,
		MinFreeLength:      2,
	}
}
