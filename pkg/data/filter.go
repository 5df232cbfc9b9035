package data

// FilterPanelDataToQuery derives the view of data seen by the query refID:
// only its frames, only its error, and a state recomputed for that query.
// data is never modified. A nil data yields nil.
func FilterPanelDataToQuery(data *PanelData, refID string) *PanelData {
	if data == nil {
		return nil
	}

	series := make([]Frame, 0, len(data.Series))
	for _, s := range data.Series {
		if s.RefID == refID {
			series = append(series, s)
		}
	}

	// Nothing came back at all and something failed: every query shows the error.
	if data.State != Loading && (data.Error != nil || data.Errors != nil) && len(data.Series) == 0 {
		out := *data
		out.State = Error
		return &out
	}

	err := findQueryError(data, refID)

	state := data.State
	switch {
	case data.State == Loading:
		// Siblings may still be in flight.
		state = Loading
	case err != nil:
		state = Error
	case data.State == Error:
		state = Done
	}

	out := &PanelData{
		State:     state,
		Series:    series,
		Error:     err,
		TimeRange: data.TimeRange,
		Request:   data.Request,
	}
	if err != nil {
		out.Errors = []QueryError{*err}
	}
	return out
}

func findQueryError(data *PanelData, refID string) *QueryError {
	if refID == "" {
		return nil
	}
	for i := range data.Errors {
		if data.Errors[i].RefID == refID {
			e := data.Errors[i]
			return &e
		}
	}
	if data.Error != nil && data.Error.RefID == refID {
		e := *data.Error
		return &e
	}
	return nil
}
