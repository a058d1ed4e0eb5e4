package order

import (
	"fmt"
	"math"
	"time"
)

// vietnamOffsetHours is the zone the Vietnamese lunar calendar is computed in.
// It is fixed at UTC+7 regardless of the configured display zone.
const vietnamOffsetHours = 7.0

// LunarDate is a date on the Vietnamese lunisolar calendar
type LunarDate struct {
	Day   int
	Month int
	Year  int
	Leap  bool
}

// Label renders the date the way the order desk shows it, e.g. "15/8 ÂL".
// Leap months carry an "N" (nhuận) suffix on the month.
func (d LunarDate) Label() string {
	if d.Day == 0 {
		return ""
	}
	if d.Leap {
		return fmt.Sprintf("%d/%dN ÂL", d.Day, d.Month)
	}
	return fmt.Sprintf("%d/%d ÂL", d.Day, d.Month)
}

// LunarLabel is the lunar label of the calendar day t, "" for the zero time
func LunarLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return SolarToLunar(t.Year(), int(t.Month()), t.Day()).Label()
}

// SolarToLunar converts a Gregorian date using the astronomical new moon and
// solar term approximations of Ho Ngoc Duc's algorithm.
func SolarToLunar(year, month, day int) LunarDate {
	tz := vietnamOffsetHours
	dayNumber := julianDay(day, month, year)
	k := int(math.Floor((float64(dayNumber) - 2415021.076998695) / 29.530588853))

	monthStart := newMoonDay(k+1, tz)
	if monthStart > dayNumber {
		monthStart = newMoonDay(k, tz)
	}

	a11 := lunarMonth11(year, tz)
	b11 := a11
	var lunarYear int
	if a11 >= monthStart {
		lunarYear = year
		a11 = lunarMonth11(year-1, tz)
	} else {
		lunarYear = year + 1
		b11 = lunarMonth11(year+1, tz)
	}

	lunarDay := dayNumber - monthStart + 1
	diff := int(math.Floor(float64(monthStart-a11) / 29))
	leap := false
	lunarMonth := diff + 11
	if b11-a11 > 365 {
		leapDiff := leapMonthOffset(a11, tz)
		if diff >= leapDiff {
			lunarMonth = diff + 10
			if diff == leapDiff {
				leap = true
			}
		}
	}
	if lunarMonth > 12 {
		lunarMonth -= 12
	}
	if lunarMonth >= 11 && diff < 4 {
		lunarYear--
	}

	return LunarDate{Day: lunarDay, Month: lunarMonth, Year: lunarYear, Leap: leap}
}

// julianDay is the Julian day number of a Gregorian (or, before 1582, Julian) date
func julianDay(dd, mm, yy int) int {
	a := (14 - mm) / 12
	y := yy + 4800 - a
	m := mm + 12*a - 3
	jd := dd + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
	if jd < 2299161 {
		jd = dd + (153*m+2)/5 + 365*y + y/4 - 32083
	}
	return jd
}

// newMoon returns the Julian date of the k-th new moon after 1900-01-01
func newMoon(k int) float64 {
	kf := float64(k)
	t := kf / 1236.85
	t2 := t * t
	t3 := t2 * t
	dr := math.Pi / 180

	jd1 := 2415020.75933 + 29.53058868*kf + 0.0001178*t2 - 0.000000155*t3
	jd1 += 0.00033 * math.Sin((166.56+132.87*t-0.009173*t2)*dr)
	m := 359.2242 + 29.10535608*kf - 0.0000333*t2 - 0.00000347*t3
	mpr := 306.0253 + 385.81691806*kf + 0.0107306*t2 + 0.00001236*t3
	f := 21.2964 + 390.67050646*kf - 0.0016528*t2 - 0.00000239*t3

	c1 := (0.1734-0.000393*t)*math.Sin(m*dr) + 0.0021*math.Sin(2*dr*m)
	c1 = c1 - 0.4068*math.Sin(mpr*dr) + 0.0161*math.Sin(dr*2*mpr)
	c1 = c1 - 0.0004*math.Sin(dr*3*mpr)
	c1 = c1 + 0.0104*math.Sin(dr*2*f) - 0.0051*math.Sin(dr*(m+mpr))
	c1 = c1 - 0.0074*math.Sin(dr*(m-mpr)) + 0.0004*math.Sin(dr*(2*f+m))
	c1 = c1 - 0.0004*math.Sin(dr*(2*f-m)) - 0.0006*math.Sin(dr*(2*f+mpr))
	c1 = c1 + 0.0010*math.Sin(dr*(2*f-mpr)) + 0.0005*math.Sin(dr*(2*mpr+m))

	var deltaT float64
	if t < -11 {
		deltaT = 0.001 + 0.000839*t + 0.0002261*t2 - 0.00000845*t3 - 0.000000081*t*t3
	} else {
		deltaT = -0.000278 + 0.000265*t + 0.000262*t2
	}
	return jd1 + c1 - deltaT
}

func newMoonDay(k int, tz float64) int {
	return int(math.Floor(newMoon(k) + 0.5 + tz/24))
}

// sunLongitude returns the sun's longitude in radians at Julian date jdn
func sunLongitude(jdn float64) float64 {
	t := (jdn - 2451545.0) / 36525
	t2 := t * t
	dr := math.Pi / 180

	m := 357.52910 + 35999.05030*t - 0.0001559*t2 - 0.00000048*t*t2
	dl := (1.914600 - 0.004817*t - 0.000014*t2) * math.Sin(dr*m)
	dl += (0.019993-0.000101*t)*math.Sin(dr*2*m) + 0.000290*math.Sin(dr*3*m)
	l0 := 280.46645 + 36000.76983*t + 0.0003032*t2

	l := (l0 + dl) * dr
	return l - math.Pi*2*math.Floor(l/(math.Pi*2))
}

// solarTerm maps a day to one of the 12 major solar terms (0..11)
func solarTerm(dayNumber int, tz float64) int {
	return int(math.Floor(sunLongitude(float64(dayNumber)-0.5-tz/24) / math.Pi * 6))
}

// lunarMonth11 finds the start of the lunar month containing the winter solstice
func lunarMonth11(yy int, tz float64) int {
	off := float64(julianDay(31, 12, yy)) - 2415021.076998695
	k := int(math.Floor(off / 29.530588853))
	nm := newMoonDay(k, tz)
	if solarTerm(nm, tz) >= 9 {
		nm = newMoonDay(k-1, tz)
	}
	return nm
}

// leapMonthOffset locates the first month without a major solar term after a11
func leapMonthOffset(a11 int, tz float64) int {
	k := int(math.Floor((float64(a11)-2415021.076998695)/29.530588853 + 0.5))
	i := 1
	arc := solarTerm(newMoonDay(k+i, tz), tz)
	for {
		last := arc
		i++
		arc = solarTerm(newMoonDay(k+i, tz), tz)
		if arc == last || i >= 14 {
			break
		}
	}
	return i - 1
}
