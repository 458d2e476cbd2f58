package calendar

import (
	"fmt"
	"time"

	"github.com/hebcal/hdate"

	"lunchbudget/internal/core"
)

// hebrewOffset is the difference between a Gregorian year and the Hebrew
// year that begins in its autumn.
const hebrewOffset = 3761

var roshChodeshMonths = []struct {
	month hdate.HMonth
	name  string
}{
	{hdate.Cheshvan, "Cheshvan"},
	{hdate.Kislev, "Kislev"},
	{hdate.Tevet, "Tevet"},
	{hdate.Shvat, "Sh'vat"},
	{hdate.Nisan, "Nisan"},
	{hdate.Iyyar, "Iyyar"},
	{hdate.Sivan, "Sivan"},
	{hdate.Tamuz, "Tamuz"},
	{hdate.Av, "Av"},
	{hdate.Elul, "Elul"},
}

// isLeapYear follows the 19 year Metonic cycle: years 3, 6, 8, 11, 14, 17
// and 19 carry a second Adar.
func isLeapYear(year int) bool {
	return (7*year+1)%19 < 7
}

// gregorian converts a Hebrew date to a Gregorian civil date (UTC midnight).
func gregorian(year int, month hdate.HMonth, day int) time.Time {
	hd := hdate.New(year, month, day)
	g := hd.Gregorian()
	return time.Date(g.Year(), g.Month(), g.Day(), 0, 0, 0, 0, time.UTC)
}

// yearEvents lists the named events of one Hebrew year on the diaspora
// schedule. It covers Tishrei..Elul of that year plus Erev Rosh Hashana
// of the next one (29 Elul).
func yearEvents(year int) []core.Holiday {
	var out []core.Holiday
	add := func(name string, month hdate.HMonth, day int) {
		out = append(out, core.Holiday{Name: name, Date: gregorian(year, month, day)})
	}

	add("Rosh Hashana 1", hdate.Tishrei, 1)
	add("Rosh Hashana 2", hdate.Tishrei, 2)
	add("Erev Yom Kippur", hdate.Tishrei, 9)
	add("Yom Kippur", hdate.Tishrei, 10)
	add("Erev Sukkot", hdate.Tishrei, 14)
	add("Sukkot: 1", hdate.Tishrei, 15)
	add("Sukkot: 2", hdate.Tishrei, 16)
	for d := 3; d <= 6; d++ {
		add(fmt.Sprintf("Sukkot: %d (CH''M)", d), hdate.Tishrei, 14+d)
	}
	add("Sukkot: 7 (Hoshana Raba)", hdate.Tishrei, 21)
	add("Shmini Atzeret", hdate.Tishrei, 22)
	add("Simchat Torah", hdate.Tishrei, 23)

	add("Chanukah: 1 Candle", hdate.Kislev, 24)
	add("Tu BiShvat", hdate.Shvat, 15)
	if isLeapYear(year) {
		add("Purim", hdate.Adar2, 14)
	} else {
		add("Purim", hdate.Adar1, 14)
	}

	add("Erev Pesach", hdate.Nisan, 14)
	add("Pesach: 1", hdate.Nisan, 15)
	add("Pesach: 2", hdate.Nisan, 16)
	for d := 3; d <= 6; d++ {
		add(fmt.Sprintf("Pesach: %d (CH''M)", d), hdate.Nisan, 14+d)
	}
	add("Pesach: 7", hdate.Nisan, 21)
	add("Pesach: 8", hdate.Nisan, 22)

	if year >= 5711 {
		add("Yom HaShoah", hdate.Nisan, yomHaShoahDay(year))
	}
	if year >= 5708 {
		day := yomHaAtzmautDay(year)
		add("Yom HaZikaron", hdate.Iyyar, day-1)
		add("Yom HaAtzma'ut", hdate.Iyyar, day)
	}
	add("Lag B'Omer", hdate.Iyyar, 18)

	add("Erev Shavuot", hdate.Sivan, 5)
	add("Shavuot 1", hdate.Sivan, 6)
	add("Shavuot 2", hdate.Sivan, 7)

	if gregorian(year, hdate.Av, 9).Weekday() == time.Saturday {
		add("Tish'a B'Av (observed)", hdate.Av, 10)
	} else {
		add("Tish'a B'Av", hdate.Av, 9)
	}

	add("Erev Rosh Hashana", hdate.Elul, 29)

	for _, rc := range roshChodeshMonths {
		add("Rosh Chodesh "+rc.name, rc.month, 1)
	}
	if isLeapYear(year) {
		add("Rosh Chodesh Adar I", hdate.Adar1, 1)
		add("Rosh Chodesh Adar II", hdate.Adar2, 1)
	} else {
		add("Rosh Chodesh Adar", hdate.Adar1, 1)
	}

	return out
}

// yomHaAtzmautDay returns the Iyyar day Independence Day is observed on.
// It moves back to Thursday when 5 Iyyar falls on Friday or Shabbat, and
// since 5764 forward to Tuesday when it falls on Monday.
func yomHaAtzmautDay(year int) int {
	switch gregorian(year, hdate.Iyyar, 5).Weekday() {
	case time.Friday:
		return 4
	case time.Saturday:
		return 3
	case time.Monday:
		if year >= 5764 {
			return 6
		}
	}
	return 5
}

func yomHaShoahDay(year int) int {
	switch gregorian(year, hdate.Nisan, 27).Weekday() {
	case time.Friday:
		return 26
	case time.Sunday:
		return 28
	}
	return 27
}

// monthEvents returns every generated event whose Gregorian date falls in
// the given month, in the order the years were generated.
func monthEvents(year int, month time.Month) []core.Holiday {
	var out []core.Holiday
	// A Gregorian year touches the tail of one Hebrew year and the head of
	// the next; the extra year covers late Kislev/Tevet events in January.
	for hy := year + hebrewOffset - 2; hy <= year+hebrewOffset; hy++ {
		for _, ev := range yearEvents(hy) {
			if ev.Date.Year() == year && ev.Date.Month() == month {
				out = append(out, ev)
			}
		}
	}
	return out
}
