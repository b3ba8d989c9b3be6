package application

import (
	"strings"

	"etsy-receipts/internal/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var regionNamer = display.English.Regions()

// ResolveCountryNames rewrites each receipt's ISO country code to its English display name.
// Empty, unparseable and unknown codes are left as they are.
func ResolveCountryNames(receipts []domain.Receipt) []domain.Receipt {
	for i := range receipts {
		receipts[i].CountryISO = regionDisplayName(receipts[i].CountryISO)
	}
	return receipts
}

func regionDisplayName(code string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		return code
	}

	region, err := language.ParseRegion(trimmed)
	if err != nil || region.String() == "ZZ" {
		return code
	}

	name := regionNamer.Name(region)
	if name == "" {
		return code
	}
	return name
}

// AggregationKey returns "title firstVariationValue" for a transaction.
// A transaction without variations is keyed by its title alone.
func AggregationKey(t domain.Transaction) string {
	if len(t.Variations) == 0 {
		return t.Title
	}
	return t.Title + " " + t.Variations[0].FormattedValue
}

// CountLineItems counts transactions per aggregation key across all orders, in first-seen order
func CountLineItems(orders []domain.Receipt) domain.LineItemCounts {
	counts := domain.LineItemCounts{}
	index := make(map[string]int)

	for _, order := range orders {
		for _, t := range order.Transactions {
			key := AggregationKey(t)
			if i, ok := index[key]; ok {
				counts[i].Count++
				continue
			}
			index[key] = len(counts)
			counts = append(counts, domain.LineItemCount{Key: key, Count: 1})
		}
	}
	return counts
}
