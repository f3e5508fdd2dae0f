package availability

import "time"

// SlotStep is the fixed slot grid. Slots are always offered on the half-hour
// regardless of service duration, so services of odd lengths still start
// on-grid. See Slots.
const SlotStep Minutes = 30

// Slots returns every bookable start time for a service of the given duration
// on date, ignoring existing bookings (FilterBooked removes those). The result
// is empty when day-level validation fails.
//
// A start t is offered iff the service fits before closing (t+dur <= End) and
// its occupied interval [t, t+dur) does not intersect the break window;
// partial overlap at either edge disqualifies the slot.
func Slots(in Inputs, date time.Time, serviceDuration Minutes) []Minutes {
	if serviceDuration <= 0 {
		return nil
	}
	res := Validate(in, date, nil)
	if !res.Valid {
		return nil
	}

	s := res.Schedule
	var out []Minutes
	for t := s.Start; t+serviceDuration <= s.End; t += SlotStep {
		if s.Break != nil && intersects(t, t+serviceDuration, s.Break.Start, s.Break.End) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterBooked removes every slot whose occupied interval [t, t+duration)
// intersects an existing booking. Touching endpoints do not count as overlap.
func FilterBooked(slots []Minutes, duration Minutes, booked []Booking) []Minutes {
	if duration <= 0 {
		return nil
	}
	out := make([]Minutes, 0, len(slots))
	for _, t := range slots {
		if !overlapsAny(t, t+duration, booked) {
			out = append(out, t)
		}
	}
	return out
}

func overlapsAny(start, end Minutes, booked []Booking) bool {
	for _, b := range booked {
		if intersects(start, end, b.Start, b.Start+b.Duration) {
			return true
		}
	}
	return false
}

// intersects reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any point.
func intersects(aStart, aEnd, bStart, bEnd Minutes) bool {
	return aStart < bEnd && bStart < aEnd
}
