package aggregate

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/srr_metrics/backend/internal/models"
)

// All is the filter value that disables a filter.
const All = "All"

type Filters struct {
	Service string `json:"service"`
	Month   string `json:"month"`
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

func (f Filters) Apply(records []models.Interaction) []models.Interaction {
	if isAll(f.Service) && isAll(f.Month) {
		return records
	}
	out := make([]models.Interaction, 0, len(records))
	for _, r := range records {
		if !isAll(f.Service) && r.Service != f.Service {
			continue
		}
		if !isAll(f.Month) && r.Month != f.Month {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Options are the distinct values offered by the service and month pickers,
// in first-seen order as the sheet lists them. DefaultMonth is the month a
// picker should start on: the current month when it has data, else All.
type Options struct {
	Services     []string `json:"services"`
	Months       []string `json:"months"`
	DefaultMonth string   `json:"default_month"`
}

// FilterOptions lists every service, and the months present for the selected
// service.
func FilterOptions(records []models.Interaction, service string, now time.Time) Options {
	months := distinct(Filters{Service: service}.Apply(records), DimMonth)
	def := All
	for _, m := range months {
		if m == now.Month().String() {
			def = m
			break
		}
	}
	return Options{
		Services:     distinct(records, DimService),
		Months:       months,
		DefaultMonth: def,
	}
}

func distinct(records []models.Interaction, dim Dimension) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range records {
		v, ok := dim.key(r)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

var monthOrder = map[string]int{
	"January": 1, "February": 2, "March": 3, "April": 4, "May": 5, "June": 6,
	"July": 7, "August": 8, "September": 9, "October": 10, "November": 11, "December": 12,
}

// lessKey orders dimension values: hours numerically, months by calendar
// (unknown names after, alphabetically), everything else alphabetically.
func lessKey(dim Dimension) func(a, b string) bool {
	switch dim {
	case DimHour:
		return func(a, b string) bool {
			ai, _ := strconv.Atoi(a)
			bi, _ := strconv.Atoi(b)
			return ai < bi
		}
	case DimMonth:
		return func(a, b string) bool {
			ai, aok := monthOrder[a]
			bi, bok := monthOrder[b]
			switch {
			case aok && bok:
				return ai < bi
			case aok != bok:
				return aok
			default:
				return a < b
			}
		}
	default:
		return func(a, b string) bool { return a < b }
	}
}

func sortKeys(keys []string, dim Dimension) {
	less := lessKey(dim)
	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
}
