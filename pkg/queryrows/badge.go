package queryrows

import (
	"fmt"

	"github.com/oakwood-commons/paneledit/pkg/data"
)

// Badge summarises the distinct notices of one severity on a row.
type Badge struct {
	Severity data.Severity
	Count    int
	Label    string
	Tooltip  []string
}

// NoticeBadge builds the badge for sev from the row's view. It returns nil
// when the view carries no such notice.
func NoticeBadge(view *data.PanelData, sev data.Severity) *Badge {
	if view == nil {
		return nil
	}
	texts := data.UniqueNoticeTexts(view.Series, sev)
	if len(texts) == 0 {
		return nil
	}
	return &Badge{
		Severity: sev,
		Count:    len(texts),
		Label:    fmt.Sprintf("%d %s", len(texts), pluralize(string(sev), len(texts))),
		Tooltip:  texts,
	}
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
