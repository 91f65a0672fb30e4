package domain

import "time"

// RawListing is one scraped classified-ad item as handed over by the crawler,
// after legacy field names have been resolved.
type RawListing struct {
	ID           string
	Title        string
	Description  string
	RawPrice     string
	LocationHint string
	CityHint     string
	SourceURL    string
	Seller       RawSeller
	ScrapedAt    *time.Time
}

// RawSeller is whatever the crawler captured about the publisher.
type RawSeller struct {
	Name       string
	ProfileURL string
	Kind       string
}

type Currency string

const (
	CurrencyMXN Currency = "MXN"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

type OperationType string

const (
	OperationSale    OperationType = "sale"
	OperationRent    OperationType = "rent"
	OperationUnknown OperationType = "unknown"
)

type PropertyType string

const (
	PropertyHouse        PropertyType = "house"
	PropertyHouseInCondo PropertyType = "house_in_condo"
	PropertyApartment    PropertyType = "apartment"
	PropertyLand         PropertyType = "land"
	PropertyRetail       PropertyType = "retail"
	PropertyOffice       PropertyType = "office"
	PropertyWarehouse    PropertyType = "warehouse"
	PropertyOther        PropertyType = "other"
)

type Condition string

const (
	ConditionNew         Condition = "new"
	ConditionExcellent   Condition = "excellent"
	ConditionGood        Condition = "good"
	ConditionRegular     Condition = "regular"
	ConditionPoor        Condition = "poor"
	ConditionUnspecified Condition = "unspecified"
)

type SellerKind string

const (
	SellerIndividual SellerKind = "individual"
	SellerAgency     SellerKind = "agency"
	SellerUnknown    SellerKind = "unknown"
)

type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "cash"
	PaymentCredit    PaymentMethod = "credit"
	PaymentInfonavit PaymentMethod = "infonavit"
	PaymentFovissste PaymentMethod = "fovissste"
)

type RecordStatus string

const (
	StatusAccepted RecordStatus = "accepted"
	StatusRejected RecordStatus = "rejected"
)
