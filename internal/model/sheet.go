package model

// SheetRef points at one orders workbook and the cell range holding the
// user rows on each of its sheets.
type SheetRef struct {
	ID    string `yaml:"id" json:"id"`
	Range string `yaml:"range" json:"range"`
}

// RawWeek is one sheet as read: its title and the cell matrix.
type RawWeek struct {
	Label string
	Rows  [][]string
}
