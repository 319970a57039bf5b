package services

import (
	"strconv"
	"time"
)

// A DOT code is a four-digit week/year manufacture code, e.g. "2201" for
// week 22 of 2001. Two-digit years below 70 read as 20xx.

func dotValid(code string) bool {
	if len(code) != 4 {
		return false
	}
	week, err := strconv.Atoi(code[:2])
	if err != nil {
		return false
	}
	if _, err := strconv.Atoi(code[2:]); err != nil {
		return false
	}
	return week >= 1 && week <= 53
}

// dotManufactured returns the Monday of the coded week.
func dotManufactured(code string) (time.Time, error) {
	if !dotValid(code) {
		return time.Time{}, validationf("invalid DOT code %q", code)
	}
	week, _ := strconv.Atoi(code[:2])
	yy, _ := strconv.Atoi(code[2:])
	year := 1900 + yy
	if yy < 70 {
		year = 2000 + yy
	}

	// ISO 8601: week 1 is the week containing January 4th
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset)
	return monday.AddDate(0, 0, (week-1)*7), nil
}

// dotExpiry derives the expiry date from manufacture week plus the product
// shelf life. Zero shelf life means no derived expiry.
func dotExpiry(code string, shelfLifeMonths int) (time.Time, error) {
	if shelfLifeMonths <= 0 {
		return time.Time{}, nil
	}
	mfg, err := dotManufactured(code)
	if err != nil {
		return time.Time{}, err
	}
	return mfg.AddDate(0, shelfLifeMonths, 0), nil
}

// dotSortKey orders DOT codes oldest first: year, then week.
func dotSortKey(code string) int {
	if !dotValid(code) {
		return 1 << 30
	}
	week, _ := strconv.Atoi(code[:2])
	yy, _ := strconv.Atoi(code[2:])
	year := 1900 + yy
	if yy < 70 {
		year = 2000 + yy
	}
	return year*100 + week
}
