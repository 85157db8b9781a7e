package transcript

import "time"

// DurationMinutes returns end-start in minutes, or 0 when either side is
// missing. Negative durations pass through unchanged.
func DurationMinutes(start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return end.Sub(start).Minutes()
}

// AverageResponseMinutes averages the latency of every adjacent user->agent
// pair in the given order. Negative samples and pairs with a missing time are
// ignored. Nil means no qualifying pair.
func AverageResponseMinutes(messages []Message) *float64 {
	if len(messages) < 2 {
		return nil
	}
	var sum float64
	samples := 0
	for i := 0; i < len(messages)-1; i++ {
		cur, next := messages[i], messages[i+1]
		if !cur.IsUser() || !next.IsAgent() {
			continue
		}
		if !cur.HasTime() || !next.HasTime() {
			continue
		}
		latency := next.Time.Sub(cur.Time).Minutes()
		if latency < 0 {
			continue
		}
		sum += latency
		samples++
	}
	if samples == 0 {
		return nil
	}
	avg := sum / float64(samples)
	return &avg
}

func ComputeMetrics(r Record) Metrics {
	return Metrics{
		DurationMinutes:        DurationMinutes(r.StartTime, r.EndTime),
		MessageCount:           len(r.Messages),
		AverageResponseMinutes: AverageResponseMinutes(r.Messages),
	}
}
