package entity

// Weekdays is the canonical order of officeTime entries.
var Weekdays = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeeklyOfficeTime builds the full seven-day schedule with the same hours
// on every day.
func WeeklyOfficeTime(startTime, endTime string) []OfficeTiming {
	week := make([]OfficeTiming, 0, len(Weekdays))
	for _, day := range Weekdays {
		week = append(week, OfficeTiming{
			Day:       day,
			StartTime: startTime,
			EndTime:   endTime,
		})
	}
	return week
}
