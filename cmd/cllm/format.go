package main

import "time"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "----------"
	}
	return t.Local().Format(time.DateOnly)
}
