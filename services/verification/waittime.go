package verification

import "fmt"

// FormatWaitTime renders a whole-second wait into the Arabic duration
// text shown to users alongside rate-limit rejections. Buckets round
// up so the displayed wait never undershoots the real one.
func FormatWaitTime(seconds int) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%d ثانية", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%d دقيقة", ceilDiv(seconds, 60))
	case seconds < 86400:
		return fmt.Sprintf("%d ساعة", ceilDiv(seconds, 3600))
	default:
		return fmt.Sprintf("%d يوم", ceilDiv(seconds, 86400))
	}
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
