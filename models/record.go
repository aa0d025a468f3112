package models

// Row is a record the output pipeline knows how to validate and persist.
type Row interface {
	Key() string
	Kind() string
	Validate() error
	CSVHeader() []string
	CSVRecord() []string
}

// Priced records carry a numeric price.
type Priced interface {
	PriceValue() float64
}

// Tagged records carry an ordered list of tags.
type Tagged interface {
	TagList() []string
}
