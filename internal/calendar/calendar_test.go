package calendar

import (
	"testing"
	"time"

	"projectplan/model"
)

func standardFiveDayWeek() model.Calendar {
	working := map[time.Weekday]bool{
		time.Monday: true, time.Tuesday: true, time.Wednesday: true,
		time.Thursday: true, time.Friday: true,
	}
	ranges := map[time.Weekday][]model.TimeRange{}
	for wd := range working {
		ranges[wd] = []model.TimeRange{{StartMinute: 9 * 60, EndMinute: 17 * 60}}
	}
	return model.Calendar{ID: "standard", WorkingWeekdays: working, WorkingRanges: ranges}
}

func mustBuild(t *testing.T, c model.Calendar) *WorkCalendar {
	t.Helper()
	wc, err := Build(c)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return wc
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsWorkingDay(t *testing.T) {
	wc := mustBuild(t, standardFiveDayWeek())

	cases := []struct {
		d    time.Time
		want bool
	}{
		{date(2025, 1, 6), true},  // Monday
		{date(2025, 1, 11), false}, // Saturday
		{date(2025, 1, 12), false}, // Sunday
	}
	for _, c := range cases {
		if got := wc.IsWorkingDay(c.d); got != c.want {
			t.Errorf("IsWorkingDay(%s) = %v, want %v", c.d.Format("2006-01-02"), got, c.want)
		}
	}
}

func TestPlaceFiveDayDuration(t *testing.T) {
	wc := mustBuild(t, standardFiveDayWeek())

	start := date(2025, 1, 6) // Monday
	finish := wc.Place(start, 4) // duration 5 days: place(start, duration-1)

	want := date(2025, 1, 10) // Friday
	if !finish.Equal(want) {
		t.Errorf("Place(%s, 4) = %s, want %s", start.Format("2006-01-02"), finish.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestPlaceSkipsWeekend(t *testing.T) {
	wc := mustBuild(t, standardFiveDayWeek())

	start := date(2025, 1, 6)
	got := wc.Place(start, 9) // 10 working days from Monday 1/6
	want := date(2025, 1, 17) // second Friday
	if !got.Equal(want) {
		t.Errorf("Place(start, 9) = %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestHolidayCountedSeparately(t *testing.T) {
	c := standardFiveDayWeek()
	c.Holidays = []model.DateRange{{Start: date(2025, 1, 6), End: date(2025, 1, 6)}}
	wc := mustBuild(t, c)

	if wc.IsWorkingDay(date(2025, 1, 6)) {
		t.Errorf("expected holiday to override working weekday")
	}

	working, weekend, holiday := wc.DaySpan(date(2025, 1, 6), date(2025, 1, 12))
	if holiday != 1 {
		t.Errorf("holiday = %d, want 1", holiday)
	}
	if weekend != 2 {
		t.Errorf("weekend = %d, want 2", weekend)
	}
	if working != 4 {
		t.Errorf("working = %d, want 4", working)
	}
}

func TestZeroWorkingHoursIsFatal(t *testing.T) {
	c := standardFiveDayWeek()
	c.WorkingRanges[time.Monday] = nil

	if _, err := Build(c); err == nil {
		t.Fatal("expected ErrZeroWorkingHours, got nil")
	} else if _, ok := err.(*ErrZeroWorkingHours); !ok {
		t.Fatalf("expected *ErrZeroWorkingHours, got %T", err)
	}
}

func TestNoWorkingDaysIsFatal(t *testing.T) {
	c := model.Calendar{ID: "empty"}
	if _, err := Build(c); err == nil {
		t.Fatal("expected ErrNoWorkingDays, got nil")
	} else if _, ok := err.(*ErrNoWorkingDays); !ok {
		t.Fatalf("expected *ErrNoWorkingDays, got %T", err)
	}
}

func TestRedundantHolidayWeekday(t *testing.T) {
	c := standardFiveDayWeek()
	// Saturday 2025-01-11 is not a working weekday, so a holiday on it is redundant.
	c.Holidays = []model.DateRange{{Start: date(2025, 1, 11), End: date(2025, 1, 11)}}
	wc := mustBuild(t, c)

	redundant := wc.RedundantHolidayWeekdays()
	if len(redundant) != 1 {
		t.Fatalf("RedundantHolidayWeekdays() = %v, want 1 entry", redundant)
	}
}
