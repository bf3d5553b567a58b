package view

import (
	"time"

	"github.com/javiermolinar/quorum/internal/dateutil"
)

// DateLabels turns YYYY-MM-DD column dates into short "Mon Jan 6" headers and
// marks today's column with asterisks. Unparseable dates are kept verbatim.
func DateLabels(dates []string, today time.Time) []string {
	labels := make([]string, len(dates))
	todayKey := today.Format(dateutil.Layout)
	for i, ds := range dates {
		d, err := dateutil.ParseStrictDate(ds)
		if err != nil {
			labels[i] = ds
			continue
		}
		label := d.Format("Mon Jan 2")
		if ds == todayKey {
			label = "*" + label + "*"
		}
		labels[i] = label
	}
	return labels
}
