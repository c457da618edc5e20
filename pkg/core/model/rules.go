package model

import "time"

// ShiftType is a categorized work slot tag (e.g. MORNING, NIGHT, GUARD_24H).
type ShiftType string

const (
	ShiftMorning        ShiftType = "MORNING"
	ShiftAfternoon      ShiftType = "AFTERNOON"
	ShiftNight          ShiftType = "NIGHT"
	ShiftGuard24H       ShiftType = "GUARD_24H"
	ShiftWeekendGuard   ShiftType = "WEEKEND_GUARD"
	ShiftWeekendOnCall  ShiftType = "WEEKEND_ON_CALL"
	ShiftConsultationAM ShiftType = "CONSULTATION_AM"
	ShiftConsultationPM ShiftType = "CONSULTATION_PM"
	ShiftBlockAM        ShiftType = "OPERATING_BLOCK_AM"
	ShiftBlockPM        ShiftType = "OPERATING_BLOCK_PM"
)

// Category groups shift types for incompatibility rules. Categories are
// resolved once at configuration load, never by inspecting type names at
// evaluation time.
type Category int

const (
	CategoryOther Category = iota
	CategoryGuard
	CategoryOnCall
	CategoryConsultation
	CategoryOperatingBlock
)

func (c Category) String() string {
	switch c {
	case CategoryGuard:
		return "guard"
	case CategoryOnCall:
		return "on_call"
	case CategoryConsultation:
		return "consultation"
	case CategoryOperatingBlock:
		return "operating_block"
	default:
		return "other"
	}
}

// HalfDay identifies the half of a calendar day a shift occupies.
type HalfDay int

const (
	FullDay HalfDay = iota
	MorningHalf
	AfternoonHalf
)

// ShiftWindow is the concrete time window of a shift type within a day.
// EndsNextDay marks windows that roll past midnight (night shifts, 24h guards).
type ShiftWindow struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
	EndsNextDay bool
}

// RulesConfiguration is the immutable per-run rule bundle. Callers must
// treat a configuration as read-only once a run has started; Normalized
// returns an adjusted copy instead of mutating in place.
type RulesConfiguration struct {
	WeekdayShifts []ShiftType
	WeekendShifts []ShiftType

	ShiftWindows        map[ShiftType]ShiftWindow
	RequiredSpecialties map[ShiftType][]string
	Categories          map[ShiftType]Category

	MinRestHours          int
	MaxConsecutiveGuards  int
	MaxDeviation          float64
	MaxRoomsPerSupervisor int
	ExceptionalMaxRooms   int
	MinDaysBetweenGuards  int
}

// Normalized returns a copy of the configuration with out-of-range values
// clamped. Guards are never stacked back to back: MaxConsecutiveGuards is
// held to [1, 2] with a default of 1.
func (r RulesConfiguration) Normalized() RulesConfiguration {
	out := r
	if out.MaxConsecutiveGuards < 1 {
		out.MaxConsecutiveGuards = 1
	}
	if out.MaxConsecutiveGuards > 2 {
		out.MaxConsecutiveGuards = 2
	}
	if out.MaxRoomsPerSupervisor < 1 {
		out.MaxRoomsPerSupervisor = 1
	}
	if out.ExceptionalMaxRooms < out.MaxRoomsPerSupervisor {
		out.ExceptionalMaxRooms = out.MaxRoomsPerSupervisor
	}
	if out.MaxDeviation <= 0 {
		out.MaxDeviation = 1.5
	}
	return out
}

// CategoryOf returns the resolved category for a shift type.
func (r RulesConfiguration) CategoryOf(shift ShiftType) Category {
	if c, ok := r.Categories[shift]; ok {
		return c
	}
	return CategoryOther
}

// ShiftsForDate returns the required shift list for a calendar day,
// selecting the weekend set on Saturdays and Sundays.
func (r RulesConfiguration) ShiftsForDate(day time.Time) []ShiftType {
	if IsWeekend(day) {
		return r.WeekendShifts
	}
	return r.WeekdayShifts
}

// ShiftInterval resolves the concrete start/end timestamps of a shift type
// on a given calendar day.
func (r RulesConfiguration) ShiftInterval(day time.Time, shift ShiftType) (time.Time, time.Time) {
	w, ok := r.ShiftWindows[shift]
	if !ok {
		// No configured window: treat as a full working day.
		w = ShiftWindow{StartHour: 8, EndHour: 18}
	}
	d := DateOf(day)
	start := d.Add(time.Duration(w.StartHour)*time.Hour + time.Duration(w.StartMinute)*time.Minute)
	end := d.Add(time.Duration(w.EndHour)*time.Hour + time.Duration(w.EndMinute)*time.Minute)
	if w.EndsNextDay || !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

// HalfDayOf classifies a shift window as morning, afternoon or full day.
// Windows starting before noon and ending by early afternoon count as
// morning; windows starting at or after noon count as afternoon.
func (r RulesConfiguration) HalfDayOf(shift ShiftType) HalfDay {
	w, ok := r.ShiftWindows[shift]
	if !ok {
		return FullDay
	}
	if w.EndsNextDay {
		return FullDay
	}
	if w.StartHour >= 12 {
		return AfternoonHalf
	}
	if w.EndHour <= 14 {
		return MorningHalf
	}
	return FullDay
}

// IsWeekend reports whether the day is a Saturday or Sunday.
func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
