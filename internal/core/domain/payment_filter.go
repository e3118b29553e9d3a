package domain

import "sort"

// PaymentFilter selects a subset of the payment history. Zero values match
// everything; a nil Page returns the first defaultPageSize payments.
type PaymentFilter struct {
	Types         []PaymentType
	States        []PaymentState
	FromTimestamp int64
	ToTimestamp   int64
	Page          *Page
	SortAscending bool
}

// Match returns whether the payment satisfies every criterion of the filter
// other than pagination.
func (f PaymentFilter) Match(p Payment) bool {
	if len(f.Types) > 0 && !containsType(f.Types, p.Type) {
		return false
	}
	if len(f.States) > 0 && !containsState(f.States, p.State) {
		return false
	}
	if f.FromTimestamp > 0 && p.Timestamp < f.FromTimestamp {
		return false
	}
	if f.ToTimestamp > 0 && p.Timestamp > f.ToTimestamp {
		return false
	}
	return true
}

// Apply filters, sorts by timestamp and paginates the given payments.
func (f PaymentFilter) Apply(payments []Payment) []Payment {
	filtered := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if f.Match(p) {
			filtered = append(filtered, p)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if f.SortAscending {
			return filtered[i].Timestamp < filtered[j].Timestamp
		}
		return filtered[i].Timestamp > filtered[j].Timestamp
	})

	page := f.GetPage()
	start := page.Offset()
	if start >= len(filtered) {
		return []Payment{}
	}
	end := start + page.Size
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// GetPage returns the requested page or the default one.
func (f PaymentFilter) GetPage() Page {
	if f.Page == nil {
		return NewPage(0, 0)
	}
	return NewPage(f.Page.Number, f.Page.Size)
}

func containsType(types []PaymentType, t PaymentType) bool {
	for _, tt := range types {
		if tt == t {
			return true
		}
	}
	return false
}

func containsState(states []PaymentState, s PaymentState) bool {
	for _, ss := range states {
		if ss == s {
			return true
		}
	}
	return false
}
