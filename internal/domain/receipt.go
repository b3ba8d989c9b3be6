package domain

import (
	"bytes"
	"encoding/json"
)

// Receipt is a shop receipt as returned by the Etsy receipts endpoint
type Receipt struct {
	ReceiptID        int64         `json:"receipt_id"`
	Name             string        `json:"name"`
	FirstLine        string        `json:"first_line"`
	SecondLine       string        `json:"second_line"`
	City             string        `json:"city"`
	State            string        `json:"state"`
	Zip              string        `json:"zip"`
	CountryISO       string        `json:"country_iso"` // rewritten to a display name before rendering
	FormattedAddress string        `json:"formatted_address"`
	BuyerEmail       string        `json:"buyer_email"`
	MessageFromBuyer string        `json:"message_from_buyer"`
	Transactions     []Transaction `json:"transactions"`
}

// Transaction is a single line item of a receipt
type Transaction struct {
	TransactionID int64       `json:"transaction_id"`
	ListingID     int64       `json:"listing_id"`
	Title         string      `json:"title"`
	Quantity      int         `json:"quantity"`
	Variations    []Variation `json:"variations"`
}

// Variation is a buyer-selected listing variation (size, colour, ...)
type Variation struct {
	PropertyID     int64  `json:"property_id"`
	ValueID        int64  `json:"value_id"`
	FormattedName  string `json:"formatted_name"`
	FormattedValue string `json:"formatted_value"`
}

// ReceiptPage is one page of the receipts listing
type ReceiptPage struct {
	Count   int       `json:"count"`
	Results []Receipt `json:"results"`
}

// User is the authenticated Etsy user profile
type User struct {
	UserID       int64  `json:"user_id"`
	PrimaryEmail string `json:"primary_email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ImageURL     string `json:"image_url_75x75"`
}

// LineItemCount is the number of transactions sharing one aggregation key
type LineItemCount struct {
	Key   string
	Count int
}

// LineItemCounts keeps aggregation keys in first-seen order
type LineItemCounts []LineItemCount

// Map returns the counts keyed by aggregation key
func (c LineItemCounts) Map() map[string]int {
	m := make(map[string]int, len(c))
	for _, item := range c {
		m[item.Key] = item.Count
	}
	return m
}

// MarshalJSON encodes the counts as a JSON object, preserving key order
func (c LineItemCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		count, err := json.Marshal(item.Count)
		if err != nil {
			return nil, err
		}
		buf.Write(count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
