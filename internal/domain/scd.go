package domain

import "sort"

// PeriodSignal is one creator's aggregated rating signal for a single year.
// A creator with no signal for a year published nothing that year.
type PeriodSignal struct {
	CreatorID string
	Year      int
	AvgRating float64
}

// CreatorState is the classification a creator currently holds, taken from
// the open row of the quality history
type CreatorState struct {
	CreatorID string
	Class     QualityClass
	Active    bool
	StartYear int
}

// TransitionKind tells the writer what to do with a creator's current row
type TransitionKind string

const (
	// TransitionNew inserts a first open row for an unseen creator
	TransitionNew TransitionKind = "new"
	// TransitionChanged closes the current row and inserts a fresh open one
	TransitionChanged TransitionKind = "changed"
	// TransitionUnchanged leaves the current row alone
	TransitionUnchanged TransitionKind = "unchanged"
	// TransitionRevised rewrites the current row in place because it was
	// opened by the same year that is being reprocessed
	TransitionRevised TransitionKind = "revised"
)

// QualityTransition is the outcome of comparing one creator's current state
// against a year's signal
type QualityTransition struct {
	CreatorID string
	Class     QualityClass
	Active    bool
	Kind      TransitionKind
}

// HistoryRow is one SCD2 interval of a creator's quality history, covering
// the half-open year span [StartYear, EndYear)
type HistoryRow struct {
	CreatorID string
	Class     QualityClass
	Active    bool
	StartYear int
	EndYear   *int
	Current   bool
}

// BuildQualityTransitions compares the creators' current states against one
// year's signals and returns a transition per affected creator, sorted by
// creator ID. Creators with a signal are classified from their average
// rating and marked active; known creators without a signal keep their class
// and go inactive. A creator whose current row was opened by the same year
// gets a revision instead of a close-and-insert, so reprocessing a year
// corrects it in place rather than fragmenting the history.
func BuildQualityTransitions(states []CreatorState, signals []PeriodSignal, year int) []QualityTransition {
	stateByID := make(map[string]CreatorState, len(states))
	for _, st := range states {
		stateByID[st.CreatorID] = st
	}
	signalByID := make(map[string]PeriodSignal, len(signals))
	for _, sig := range signals {
		signalByID[sig.CreatorID] = sig
	}

	ids := make([]string, 0, len(stateByID)+len(signalByID))
	for id := range stateByID {
		ids = append(ids, id)
	}
	for id := range signalByID {
		if _, ok := stateByID[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	transitions := make([]QualityTransition, 0, len(ids))
	for _, id := range ids {
		st, known := stateByID[id]

		var class QualityClass
		var active bool
		if sig, ok := signalByID[id]; ok {
			class = ClassifyQuality(sig.AvgRating)
			active = true
		} else {
			// A quiet year keeps the last class and only flips activity
			class = st.Class
			active = false
		}

		kind := TransitionChanged
		switch {
		case !known:
			kind = TransitionNew
		case st.Class == class && st.Active == active:
			kind = TransitionUnchanged
		case st.StartYear == year:
			kind = TransitionRevised
		}

		transitions = append(transitions, QualityTransition{
			CreatorID: id,
			Class:     class,
			Active:    active,
			Kind:      kind,
		})
	}

	return transitions
}

// BuildHistoryRows rebuilds every creator's full SCD2 history from the
// complete signal set. Each creator is walked from their first signal year
// through latestYear, quiet years carrying the last class forward as
// inactive, and consecutive years with the same (class, active) pair
// collapse into a single interval. The final interval of each creator is
// the current one: open-ended by default, or ending at latestYear+1 when
// boundedEnd is set. Rows come back sorted by creator ID then start year.
func BuildHistoryRows(signals []PeriodSignal, latestYear int, boundedEnd bool) []HistoryRow {
	byCreator := make(map[string]map[int]float64)
	for _, sig := range signals {
		if byCreator[sig.CreatorID] == nil {
			byCreator[sig.CreatorID] = make(map[int]float64)
		}
		byCreator[sig.CreatorID][sig.Year] = sig.AvgRating
	}

	ids := make([]string, 0, len(byCreator))
	for id := range byCreator {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var rows []HistoryRow
	for _, id := range ids {
		years := byCreator[id]
		firstYear := latestYear
		for y := range years {
			if y < firstYear {
				firstYear = y
			}
		}

		var creatorRows []HistoryRow
		for y := firstYear; y <= latestYear; y++ {
			var class QualityClass
			var active bool
			if avg, ok := years[y]; ok {
				class = ClassifyQuality(avg)
				active = true
			} else {
				class = creatorRows[len(creatorRows)-1].Class
				active = false
			}

			if len(creatorRows) > 0 {
				last := &creatorRows[len(creatorRows)-1]
				if last.Class == class && last.Active == active {
					continue
				}
				end := y
				last.EndYear = &end
			}
			creatorRows = append(creatorRows, HistoryRow{
				CreatorID: id,
				Class:     class,
				Active:    active,
				StartYear: y,
			})
		}

		current := &creatorRows[len(creatorRows)-1]
		current.Current = true
		if boundedEnd {
			end := latestYear + 1
			current.EndYear = &end
		}

		rows = append(rows, creatorRows...)
	}

	return rows
}
