package data

// UniqueNoticeTexts collects the distinct texts of notices with severity sev
// across frames, in first-seen order.
func UniqueNoticeTexts(frames []Frame, sev Severity) []string {
	seen := map[string]struct{}{}
	var texts []string
	for _, f := range frames {
		if f.Meta == nil {
			continue
		}
		for _, n := range f.Meta.Notices {
			if n.Severity != sev {
				continue
			}
			if _, ok := seen[n.Text]; ok {
				continue
			}
			seen[n.Text] = struct{}{}
			texts = append(texts, n.Text)
		}
	}
	return texts
}
